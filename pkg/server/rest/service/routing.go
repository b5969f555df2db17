package service

import (
	"context"
	"log"
	"sync"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/engine/routingalgorithm"
	"github.com/annwhocodes/ResQMap/pkg/geo"
	"github.com/annwhocodes/ResQMap/pkg/graphbuilder"
	"github.com/annwhocodes/ResQMap/pkg/server"
)

// RoutingService owns the online/offline mode and the scorer and cache
// handles behind it. Handles swap atomically under the write lock;
// requests only take the read lock.
type RoutingService struct {
	fetcher  RouteFetcher
	geocoder Geocoder

	openCache  func() (RouteCache, error)
	loadScorer func() (Scorer, error)

	onlineScorer Scorer

	mu     sync.RWMutex
	mode   RoutingMode
	scorer Scorer
	cache  RouteCache
}

func NewRoutingService(fetcher RouteFetcher, geocoder Geocoder, onlineScorer Scorer,
	openCache func() (RouteCache, error), loadScorer func() (Scorer, error)) *RoutingService {
	return &RoutingService{
		fetcher:      fetcher,
		geocoder:     geocoder,
		openCache:    openCache,
		loadScorer:   loadScorer,
		onlineScorer: onlineScorer,
		mode:         ModeOnline,
		scorer:       onlineScorer,
	}
}

func (uc *RoutingService) Route(ctx context.Context, req RouteRequest) (RouteResult, error) {
	origin, destination, err := uc.resolveEndpoints(ctx, req)
	if err != nil {
		return RouteResult{}, err
	}

	uc.mu.RLock()
	mode, cache, scr := uc.mode, uc.cache, uc.scorer
	uc.mu.RUnlock()

	if mode == ModeOffline && cache != nil {
		cached, err := cache.Lookup(origin, destination, req.Avoid)
		if err == nil {
			return cachedResult(cached), nil
		}
	}

	route, err := uc.fetcher.FetchRoute(ctx, origin, destination, req.TravelMode)
	if err != nil {
		// degrade to the direct two-point route rather than failing
		log.Printf("route fetch failed, degrading to direct path: %v", err)
		route = directRouteData(origin, destination)
	}

	graph, err := graphbuilder.BuildGraph(route)
	if err != nil {
		return RouteResult{}, err
	}

	opts := routingalgorithm.DefaultSearchOptions()
	result := RouteResult{Algorithm: AlgorithmAStar}
	if req.Mode != AlgorithmAStar && scr != nil {
		scores, err := scr.Score(origin, destination, req.Avoid)
		if err != nil {
			log.Printf("scorer unavailable, using plain weights: %v", err)
		} else {
			opts.CostWeight = scores.PathCost
			opts.SafetyWeight = scores.PathSafety
			result.Algorithm = AlgorithmML
			result.Scores = &scores
		}
	}

	from, to := endpointNodes(route)
	search := routingalgorithm.NewRouteAlgorithm(graph).ShortestPathAStar(from, to, opts)
	if search.Fallback {
		log.Printf("search fell back to direct path: %s", search.Reason)
	}

	result.Fallback = search.Fallback
	result.TotalDistance = search.Dist
	result.Waypoints = pathWaypoints(search.Path)
	result.Polyline = pathPolyline(search.Path)
	for _, e := range search.Edges {
		result.TotalDuration += e.Duration
	}
	return result, nil
}

// ToggleOfflineMode switches the controller mode. Going offline loads
// the scorer artifact and opens the route-cache snapshot; any failure
// rolls back fully and the mode stays online. Self-transitions are
// no-ops.
func (uc *RoutingService) ToggleOfflineMode(ctx context.Context, enable bool) (Status, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if enable == (uc.mode == ModeOffline) {
		return uc.statusLocked(), nil
	}

	if enable {
		newScorer, err := uc.loadScorer()
		if err != nil {
			return uc.statusLocked(), server.WrapErrorf(err, server.ErrModeTransitionFailed,
				"cannot switch to offline mode: scorer model not available")
		}
		newCache, err := uc.openCache()
		if err != nil {
			return uc.statusLocked(), server.WrapErrorf(err, server.ErrModeTransitionFailed,
				"cannot switch to offline mode: route cache not available")
		}
		uc.scorer = newScorer
		uc.cache = newCache
		uc.mode = ModeOffline
		return uc.statusLocked(), nil
	}

	if uc.cache != nil {
		if err := uc.cache.Close(); err != nil {
			return uc.statusLocked(), server.WrapErrorf(err, server.ErrModeTransitionFailed,
				"cannot switch to online mode: route cache close failed")
		}
	}
	uc.cache = nil
	uc.scorer = uc.onlineScorer
	uc.mode = ModeOnline
	return uc.statusLocked(), nil
}

func (uc *RoutingService) Status() Status {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.statusLocked()
}

func (uc *RoutingService) statusLocked() Status {
	st := Status{Mode: uc.mode, ModelLoaded: uc.scorer != nil}
	if uc.cache != nil {
		if n, err := uc.cache.Len(); err == nil {
			st.CachedRoutes = n
		}
	}
	return st
}

func (uc *RoutingService) resolveEndpoints(ctx context.Context,
	req RouteRequest) (datastructure.Coordinate, datastructure.Coordinate, error) {

	origin, err := uc.resolveEndpoint(ctx, req.Origin, req.OriginText, "origin")
	if err != nil {
		return datastructure.Coordinate{}, datastructure.Coordinate{}, err
	}
	destination, err := uc.resolveEndpoint(ctx, req.Destination, req.DestinationText, "destination")
	if err != nil {
		return datastructure.Coordinate{}, datastructure.Coordinate{}, err
	}
	return origin, destination, nil
}

func (uc *RoutingService) resolveEndpoint(ctx context.Context, coord *datastructure.Coordinate,
	text string, which string) (datastructure.Coordinate, error) {

	if coord != nil {
		if !geo.ValidCoordinate(coord.Lat, coord.Lng) {
			return datastructure.Coordinate{}, server.NewErrorf(server.ErrInvalidCoordinates,
				"%s coordinates out of range", which)
		}
		return *coord, nil
	}
	if text == "" {
		return datastructure.Coordinate{}, server.NewErrorf(server.ErrEmptyRouteData,
			"%s is missing: provide coordinates or a location name", which)
	}
	if uc.geocoder == nil {
		return datastructure.Coordinate{}, server.NewErrorf(server.ErrNotFound,
			"cannot resolve %q: no geocoder configured", text)
	}
	lat, lng, err := uc.geocoder.Geocode(ctx, text)
	if err != nil {
		return datastructure.Coordinate{}, server.WrapErrorf(err, server.ErrNotFound,
			"location %q not found", text)
	}
	return datastructure.NewCoordinate(lat, lng), nil
}

// endpointNodes locates the origin and destination node ids inside the
// built graph. The builder inserts waypoint nodes first, in order, so
// the destination is the last waypoint node; degenerate graphs always
// hold exactly two nodes.
func endpointNodes(route datastructure.RouteData) (int32, int32) {
	if len(route.Waypoints) >= 2 {
		return 0, int32(len(route.Waypoints) - 1)
	}
	return 0, 1
}

func cachedResult(cached datastructure.CachedRoute) RouteResult {
	res := RouteResult{Algorithm: AlgorithmCached}
	coords := make([]datastructure.Coordinate, 0, len(cached.Points))
	for i, p := range cached.Points {
		res.Waypoints = append(res.Waypoints, datastructure.Waypoint{
			Lat:  p.Lat,
			Lng:  p.Lng,
			Name: p.Name,
			Type: "waypoint",
		})
		coords = append(coords, datastructure.NewCoordinate(p.Lat, p.Lng))
		if i > 0 {
			prev := cached.Points[i-1]
			res.TotalDistance += geo.HaversineDistance(prev.Lat, prev.Lng, p.Lat, p.Lng)
		}
	}
	res.Polyline = datastructure.RenderPath(coords)
	return res
}

func directRouteData(origin, destination datastructure.Coordinate) datastructure.RouteData {
	return datastructure.RouteData{
		Origin:      &datastructure.Waypoint{Lat: origin.Lat, Lng: origin.Lng, Name: "Start", Type: "start"},
		Destination: &datastructure.Waypoint{Lat: destination.Lat, Lng: destination.Lng, Name: "Destination", Type: "destination"},
	}
}

func pathWaypoints(path []datastructure.Node) []datastructure.Waypoint {
	wps := make([]datastructure.Waypoint, 0, len(path))
	for _, n := range path {
		wps = append(wps, datastructure.Waypoint{
			Lat:  n.Lat,
			Lng:  n.Lng,
			Name: n.Name,
			Type: n.Kind.String(),
		})
	}
	return wps
}

func pathPolyline(path []datastructure.Node) string {
	coords := make([]datastructure.Coordinate, 0, len(path))
	for _, n := range path {
		coords = append(coords, datastructure.NewCoordinate(n.Lat, n.Lng))
	}
	return datastructure.RenderPath(coords)
}
