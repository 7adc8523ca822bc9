package travel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *DirectionsClient {
	return NewDirectionsClient(ClientConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		Timeout:       2 * time.Second,
		RatePerSecond: 1000,
	}, zerolog.Nop())
}

func TestDirectionsClient_TravelTime(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"legs":[{"duration":{"value":600},"duration_in_traffic":{"value":725}}]}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	arrive := time.Unix(1715000000, 0)
	minutes, err := client.TravelTime(context.Background(), Query{
		Origin:      models.Coordinates{Latitude: 40.1, Longitude: -74.2},
		Destination: models.Coordinates{Latitude: 40.3, Longitude: -74.4},
		Mode:        models.ModeDriving,
		ArrivalTime: &arrive,
	})
	require.NoError(t, err)
	assert.Equal(t, 13, minutes, "725s rounds up to 13 minutes")

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"1715000000"}, q["arrival_time"])
	assert.Empty(t, q["departure_time"])
	assert.Equal(t, []string{"driving"}, q["mode"])
	assert.Equal(t, []string{"test-key"}, q["key"])
}

func TestDirectionsClient_InvalidArgumentSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	now := time.Now()
	_, err := client.TravelTime(context.Background(), Query{DepartureTime: &now, ArrivalTime: &now})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, int32(0), hits.Load())
}

func TestDirectionsClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusInternalServerError, `{}`},
		{"provider status", http.StatusOK, `{"status":"ZERO_RESULTS","routes":[]}`},
		{"no legs", http.StatusOK, `{"status":"OK","routes":[{"legs":[]}]}`},
		{"garbage", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			now := time.Now()
			_, err := newTestClient(srv.URL).TravelTime(context.Background(), Query{DepartureTime: &now})
			assert.ErrorIs(t, err, ErrTravelTimeUnavailable)
		})
	}
}

func TestDirectionsClient_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewDirectionsClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	now := time.Now()
	_, err := client.TravelTime(context.Background(), Query{DepartureTime: &now})
	assert.ErrorIs(t, err, ErrTravelTimeUnavailable)
}

func TestDirectionsClient_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"overview_polyline":{"points":"abc"}}]}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL).Route(context.Background(), models.Coordinates{}, models.Coordinates{}, "")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "overview_polyline")
}
