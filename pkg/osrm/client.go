package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
)

const (
	DefaultBaseURL = "http://router.project-osrm.org"
)

// Client talks to the OSRM /route/v1 directions API. It is the
// route-geometry collaborator: the core only consumes the RouteData it
// produces.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchRoute requests a route for the given travel profile (driving,
// cycling, walking) and adapts the response into RouteData.
func (c *Client) FetchRoute(ctx context.Context, origin, destination datastructure.Coordinate,
	profile string) (datastructure.RouteData, error) {

	if profile == "" {
		profile = "driving"
	}

	// OSRM takes lng,lat pairs
	coords := fmt.Sprintf("%f,%f;%f,%f", origin.Lng, origin.Lat, destination.Lng, destination.Lat)
	reqURL := fmt.Sprintf("%s/route/v1/%s/%s", c.baseURL, url.PathEscape(profile), coords)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return datastructure.RouteData{}, err
	}
	q := req.URL.Query()
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	q.Set("steps", "true")
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return datastructure.RouteData{}, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return datastructure.RouteData{}, fmt.Errorf("osrm returned status %d", resp.StatusCode)
	}

	var osrmResp response
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return datastructure.RouteData{}, fmt.Errorf("decode osrm response: %w", err)
	}

	route, err := ExtractRoute(osrmResp)
	if err != nil {
		return datastructure.RouteData{}, err
	}
	route.Origin = &datastructure.Waypoint{Lat: origin.Lat, Lng: origin.Lng, Name: "Origin"}
	route.Destination = &datastructure.Waypoint{Lat: destination.Lat, Lng: destination.Lng, Name: "Destination"}
	return route, nil
}
