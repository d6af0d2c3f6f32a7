package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdash/internal/model"
)

func testClient(url string) *Client {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	c := NewClient("test-key", log)
	c.BaseURL = url
	return c
}

func waypoints() []model.Location {
	return []model.Location{
		{Lat: 41.87, Lng: -87.62},
		{Lat: 41.25, Lng: -86.25},
		{Lat: 40.71, Lng: -74.00},
	}
}

func TestPlanRoute(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/directions/driving-hgv", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]any{{
				"summary":  map[string]any{"distance": 790.5, "duration": 46800.0},
				"segments": []map[string]any{{"distance": 90.5, "duration": 7200.0}, {"distance": 700.0, "duration": 39600.0}},
				"geometry": "abc123",
			}},
		})
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).PlanRoute(context.Background(), waypoints())
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.Polyline)
	assert.Equal(t, 790.5, res.TotalMiles)
	assert.InDelta(t, 13.0, res.TotalHours, 1e-9)
	require.Len(t, res.Legs, 2)
	assert.InDelta(t, 2.0, res.Legs[0].DurationHours, 1e-9)

	assert.Equal(t, "mi", gotBody["units"])
	coords := gotBody["coordinates"].([]any)
	require.Len(t, coords, 3)
	first := coords[0].([]any)
	assert.InDelta(t, -87.62, first[0].(float64), 1e-9) // lng first
	assert.InDelta(t, 41.87, first[1].(float64), 1e-9)
}

func TestPlanRouteNoKey(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	c := NewClient("", log)
	_, err := c.PlanRoute(context.Background(), waypoints())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPlanRouteTooFewWaypoints(t *testing.T) {
	_, err := testClient("http://invalid").PlanRoute(context.Background(), waypoints()[:1])
	assert.Error(t, err)
}

func TestPlanRouteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).PlanRoute(context.Background(), waypoints())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestPlanRouteNoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).PlanRoute(context.Background(), waypoints())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no routes")
}

func TestClampRadius(t *testing.T) {
	assert.Equal(t, 5000.0, clampRadius(5000))
	assert.Equal(t, 10000.0, clampRadius(25000))
}
