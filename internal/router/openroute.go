// Package router wraps the OpenRouteService directions API. It produces the
// encoded planned polyline and distance/duration totals; decoding is the
// geo package's job.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"tripdash/internal/model"
)

const (
	defaultBaseURL            = "https://api.openrouteservice.org"
	defaultProfile            = "driving-hgv"
	defaultSearchRadiusMeters = 5000.0
	maxSearchRadiusMeters     = 10000.0
)

// ErrNotConfigured means no API key was supplied; planning is unavailable
// but the rest of the service still runs.
var ErrNotConfigured = errors.New("route provider API key is not configured")

// Client talks to OpenRouteService.
type Client struct {
	APIKey  string
	BaseURL string
	Profile string
	HTTP    *http.Client
	Log     *logrus.Logger
}

func NewClient(apiKey string, log *logrus.Logger) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Profile: defaultProfile,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Log:     log,
	}
}

// LegMetric is the distance/duration of one leg between waypoints.
type LegMetric struct {
	DistanceMiles float64
	DurationHours float64
}

// PlanResult is the normalized directions response.
type PlanResult struct {
	Polyline   string
	TotalMiles float64
	TotalHours float64
	Legs       []LegMetric
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Units       string       `json:"units"`
	Radiuses    []float64    `json:"radiuses"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// PlanRoute requests directions through the ordered waypoints. Distances
// come back in miles (the request asks for them); durations arrive in
// seconds and are converted to hours.
func (c *Client) PlanRoute(ctx context.Context, waypoints []model.Location) (*PlanResult, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if len(waypoints) < 2 {
		return nil, errors.New("at least two waypoints are required")
	}

	body := directionsRequest{Units: "mi"}
	for _, w := range waypoints {
		// ORS wants [lng, lat]
		body.Coordinates = append(body.Coordinates, [2]float64{w.Lng, w.Lat})
		body.Radiuses = append(body.Radiuses, clampRadius(defaultSearchRadiusMeters))
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.BaseURL, c.Profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.Log.WithFields(logrus.Fields{
		"profile":   c.Profile,
		"waypoints": len(waypoints),
	}).Info("route provider request")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to contact route provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.Log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(snippet),
		}).Error("route provider error response")
		return nil, fmt.Errorf("route provider error (%d): %s", resp.StatusCode, snippet)
	}

	var out directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("route provider returned invalid JSON: %w", err)
	}
	if len(out.Routes) == 0 {
		return nil, errors.New("route provider returned no routes for the given coordinates")
	}

	r := out.Routes[0]
	res := &PlanResult{
		Polyline:   r.Geometry,
		TotalMiles: r.Summary.Distance,
		TotalHours: r.Summary.Duration / 3600,
	}
	for _, s := range r.Segments {
		res.Legs = append(res.Legs, LegMetric{
			DistanceMiles: s.Distance,
			DurationHours: s.Duration / 3600,
		})
	}

	c.Log.WithFields(logrus.Fields{
		"totalMiles": res.TotalMiles,
		"totalHours": res.TotalHours,
		"legs":       len(res.Legs),
	}).Info("route provider response")
	return res, nil
}

func clampRadius(r float64) float64 {
	if r > maxSearchRadiusMeters {
		return maxSearchRadiusMeters
	}
	return r
}
