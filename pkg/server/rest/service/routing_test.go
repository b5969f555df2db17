package service

import (
	"context"
	"errors"
	"testing"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	route datastructure.RouteData
	err   error
	calls int
}

func (f *fakeFetcher) FetchRoute(_ context.Context, _, _ datastructure.Coordinate,
	_ string) (datastructure.RouteData, error) {
	f.calls++
	return f.route, f.err
}

type fakeGeocoder struct {
	lat, lng float64
	err      error
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (float64, float64, error) {
	return f.lat, f.lng, f.err
}

type fakeScorer struct {
	res datastructure.ScoringResult
	err error
}

func (f *fakeScorer) Score(_, _ datastructure.Coordinate,
	_ datastructure.AvoidancePreferences) (datastructure.ScoringResult, error) {
	return f.res, f.err
}

type fakeCache struct {
	route    datastructure.CachedRoute
	miss     bool
	count    int
	closeErr error
	closed   bool
}

func (f *fakeCache) Lookup(_, _ datastructure.Coordinate,
	_ datastructure.AvoidancePreferences) (datastructure.CachedRoute, error) {
	if f.miss {
		return datastructure.CachedRoute{}, errors.New("route not found in cache")
	}
	return f.route, nil
}

func (f *fakeCache) Len() (int, error) { return f.count, nil }

func (f *fakeCache) Close() error {
	f.closed = true
	return f.closeErr
}

func sampleRoute() datastructure.RouteData {
	return datastructure.RouteData{
		Waypoints: []datastructure.Waypoint{
			{Lat: 19.0760, Lng: 72.8777, Name: "Start", Type: "start"},
			{Lat: 18.7500, Lng: 73.4000, Name: "Lonavala", Type: "waypoint"},
			{Lat: 18.5204, Lng: 73.8567, Name: "Destination", Type: "destination"},
		},
	}
}

func coordPtr(lat, lng float64) *datastructure.Coordinate {
	c := datastructure.NewCoordinate(lat, lng)
	return &c
}

func newOnlineService(fetcher RouteFetcher, scr Scorer) *RoutingService {
	return NewRoutingService(fetcher, &fakeGeocoder{lat: 18.5204, lng: 73.8567}, scr,
		func() (RouteCache, error) { return &fakeCache{}, nil },
		func() (Scorer, error) { return &fakeScorer{}, nil })
}

func TestRoutePlainSearch(t *testing.T) {
	svc := newOnlineService(&fakeFetcher{route: sampleRoute()}, nil)

	res, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(19.0760, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
	})
	require.NoError(t, err)

	assert.Equal(t, AlgorithmAStar, res.Algorithm)
	assert.False(t, res.Fallback)
	assert.Len(t, res.Waypoints, 3)
	assert.Greater(t, res.TotalDistance, 100_000.0)
	assert.NotEmpty(t, res.Polyline)
	assert.Nil(t, res.Scores)
}

func TestRouteScoredSearch(t *testing.T) {
	scr := &fakeScorer{res: datastructure.ScoringResult{PathCost: 1.4, PathSafety: 0.8}}
	svc := newOnlineService(&fakeFetcher{route: sampleRoute()}, scr)

	res, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(19.0760, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
		Avoid:       datastructure.AvoidancePreferences{Floods: true},
	})
	require.NoError(t, err)

	assert.Equal(t, AlgorithmML, res.Algorithm)
	require.NotNil(t, res.Scores)
	assert.InDelta(t, 1.4, res.Scores.PathCost, 1e-9)
	assert.InDelta(t, 0.8, res.Scores.PathSafety, 1e-9)
}

func TestRouteModeAStarSkipsScorer(t *testing.T) {
	scr := &fakeScorer{res: datastructure.ScoringResult{PathCost: 2.0, PathSafety: 2.0}}
	svc := newOnlineService(&fakeFetcher{route: sampleRoute()}, scr)

	res, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(19.0760, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
		Mode:        AlgorithmAStar,
	})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmAStar, res.Algorithm)
	assert.Nil(t, res.Scores)
}

func TestRouteScorerErrorFallsBackToPlain(t *testing.T) {
	svc := newOnlineService(&fakeFetcher{route: sampleRoute()},
		&fakeScorer{err: errors.New("model file corrupt")})

	res, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(19.0760, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
	})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmAStar, res.Algorithm)
}

func TestRouteFetchFailureDegradesToDirectPath(t *testing.T) {
	svc := newOnlineService(&fakeFetcher{err: errors.New("connection refused")}, nil)

	res, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(19.0760, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
	})
	require.NoError(t, err)
	assert.Len(t, res.Waypoints, 2)
	assert.Greater(t, res.TotalDistance, 0.0)
}

func TestRouteGeocodesTextEndpoints(t *testing.T) {
	fetcher := &fakeFetcher{route: sampleRoute()}
	svc := newOnlineService(fetcher, nil)

	_, err := svc.Route(context.Background(), RouteRequest{
		Origin:          coordPtr(19.0760, 72.8777),
		DestinationText: "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestRouteGeocodeMiss(t *testing.T) {
	svc := NewRoutingService(&fakeFetcher{route: sampleRoute()},
		&fakeGeocoder{err: errors.New("no results")}, nil, nil, nil)

	_, err := svc.Route(context.Background(), RouteRequest{
		Origin:          coordPtr(19.0760, 72.8777),
		DestinationText: "Atlantis",
	})
	require.Error(t, err)
	assert.Equal(t, server.ErrNotFound, server.GetCode(err))
}

func TestRouteEmptyEndpoints(t *testing.T) {
	svc := newOnlineService(&fakeFetcher{route: sampleRoute()}, nil)

	_, err := svc.Route(context.Background(), RouteRequest{})
	require.Error(t, err)
	assert.Equal(t, server.ErrEmptyRouteData, server.GetCode(err))
}

func TestRouteInvalidCoordinates(t *testing.T) {
	svc := newOnlineService(&fakeFetcher{route: sampleRoute()}, nil)

	_, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(95.0, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
	})
	require.Error(t, err)
	assert.Equal(t, server.ErrInvalidCoordinates, server.GetCode(err))
}

func TestRouteOfflineCacheHit(t *testing.T) {
	cache := &fakeCache{
		route: datastructure.CachedRoute{
			Points: []datastructure.RoutePoint{
				{Lat: 19.0760, Lng: 72.8777, Name: "Start"},
				{Lat: 18.5204, Lng: 73.8567, Name: "Destination"},
			},
		},
		count: 1,
	}
	fetcher := &fakeFetcher{route: sampleRoute()}
	svc := NewRoutingService(fetcher, &fakeGeocoder{}, nil,
		func() (RouteCache, error) { return cache, nil },
		func() (Scorer, error) { return &fakeScorer{}, nil })

	st, err := svc.ToggleOfflineMode(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, ModeOffline, st.Mode)
	assert.Equal(t, 1, st.CachedRoutes)

	res, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(19.0760, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
	})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmCached, res.Algorithm)
	assert.Len(t, res.Waypoints, 2)
	assert.Equal(t, 0, fetcher.calls)
}

func TestRouteOfflineCacheMissRunsSearch(t *testing.T) {
	fetcher := &fakeFetcher{route: sampleRoute()}
	svc := NewRoutingService(fetcher, &fakeGeocoder{}, nil,
		func() (RouteCache, error) { return &fakeCache{miss: true}, nil },
		func() (Scorer, error) { return &fakeScorer{}, nil })

	_, err := svc.ToggleOfflineMode(context.Background(), true)
	require.NoError(t, err)

	res, err := svc.Route(context.Background(), RouteRequest{
		Origin:      coordPtr(19.0760, 72.8777),
		Destination: coordPtr(18.5204, 73.8567),
	})
	require.NoError(t, err)
	assert.NotEqual(t, AlgorithmCached, res.Algorithm)
	assert.Equal(t, 1, fetcher.calls)
}

func TestToggleOfflineScorerLoadFailureRollsBack(t *testing.T) {
	svc := NewRoutingService(&fakeFetcher{route: sampleRoute()}, &fakeGeocoder{}, nil,
		func() (RouteCache, error) { return &fakeCache{}, nil },
		func() (Scorer, error) { return nil, errors.New("artifact missing") })

	st, err := svc.ToggleOfflineMode(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, server.ErrModeTransitionFailed, server.GetCode(err))
	assert.Equal(t, ModeOnline, st.Mode)
	assert.False(t, st.ModelLoaded)
}

func TestToggleOfflineCacheOpenFailureRollsBack(t *testing.T) {
	svc := NewRoutingService(&fakeFetcher{route: sampleRoute()}, &fakeGeocoder{}, nil,
		func() (RouteCache, error) { return nil, errors.New("snapshot dir missing") },
		func() (Scorer, error) { return &fakeScorer{}, nil })

	st, err := svc.ToggleOfflineMode(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, server.ErrModeTransitionFailed, server.GetCode(err))
	assert.Equal(t, ModeOnline, st.Mode)
	// the freshly loaded scorer is discarded with the failed transition
	assert.False(t, st.ModelLoaded)
	assert.Equal(t, ModeOnline, svc.Status().Mode)
}

func TestToggleBackOnlineClosesCache(t *testing.T) {
	cache := &fakeCache{}
	svc := NewRoutingService(&fakeFetcher{route: sampleRoute()}, &fakeGeocoder{}, nil,
		func() (RouteCache, error) { return cache, nil },
		func() (Scorer, error) { return &fakeScorer{}, nil })

	_, err := svc.ToggleOfflineMode(context.Background(), true)
	require.NoError(t, err)

	st, err := svc.ToggleOfflineMode(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, ModeOnline, st.Mode)
	assert.True(t, cache.closed)
	assert.False(t, st.ModelLoaded)
}

func TestToggleSelfTransitionIsNoop(t *testing.T) {
	opened := 0
	svc := NewRoutingService(&fakeFetcher{route: sampleRoute()}, &fakeGeocoder{}, nil,
		func() (RouteCache, error) { opened++; return &fakeCache{}, nil },
		func() (Scorer, error) { return &fakeScorer{}, nil })

	st, err := svc.ToggleOfflineMode(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, ModeOnline, st.Mode)
	assert.Equal(t, 0, opened)
}
