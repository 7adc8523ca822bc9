package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultDirectionsURL is the Google Directions JSON endpoint
const DefaultDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"

// ClientConfig configures the directions client
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration // per query
	RatePerSecond float64
	Burst         int
}

// DirectionsClient talks to a Google-Directions-compatible routing provider.
// It is stateless apart from its rate limiter.
type DirectionsClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewDirectionsClient creates a client; zero config values fall back to defaults
func NewDirectionsClient(cfg ClientConfig, logger zerolog.Logger) *DirectionsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultDirectionsURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Ceil(cfg.RatePerSecond)) * 2
	}
	return &DirectionsClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:  logger.With().Str("component", "directions").Logger(),
	}
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Routes       []struct {
		Legs []struct {
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
			DurationInTraffic *struct {
				Value int `json:"value"`
			} `json:"duration_in_traffic,omitempty"`
		} `json:"legs"`
	} `json:"routes"`
}

// TravelTime asks the provider for the first route and returns its duration
// rounded up to whole minutes.
func (c *DirectionsClient) TravelTime(ctx context.Context, q Query) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	params := c.params(q.Origin, q.Destination, q.Mode)
	if q.DepartureTime != nil {
		params.Set("departure_time", strconv.FormatInt(q.DepartureTime.Unix(), 10))
	} else {
		params.Set("arrival_time", strconv.FormatInt(q.ArrivalTime.Unix(), 10))
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return 0, err
	}

	var resp directionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrTravelTimeUnavailable, err)
	}
	if resp.Status != "OK" {
		return 0, fmt.Errorf("%w: provider status %s %s", ErrTravelTimeUnavailable, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return 0, fmt.Errorf("%w: no route", ErrTravelTimeUnavailable)
	}

	seconds := 0
	for _, leg := range resp.Routes[0].Legs {
		if leg.DurationInTraffic != nil {
			seconds += leg.DurationInTraffic.Value
		} else {
			seconds += leg.Duration.Value
		}
	}
	return int(math.Ceil(float64(seconds) / 60)), nil
}

// Route returns the provider's raw JSON for drawing a polyline
func (c *DirectionsClient) Route(ctx context.Context, origin, destination models.Coordinates, mode models.TransportationMode) (json.RawMessage, error) {
	body, err := c.get(ctx, c.params(origin, destination, mode))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: provider returned invalid JSON", ErrTravelTimeUnavailable)
	}
	return json.RawMessage(body), nil
}

func (c *DirectionsClient) params(origin, destination models.Coordinates, mode models.TransportationMode) url.Values {
	if mode == "" {
		mode = models.ModeDriving
	}
	params := url.Values{}
	params.Set("origin", origin.String())
	params.Set("destination", destination.String())
	params.Set("mode", string(mode))
	params.Set("key", c.apiKey)
	return params
}

func (c *DirectionsClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrTravelTimeUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTravelTimeUnavailable, err)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("directions request failed")
		return nil, fmt.Errorf("%w: %v", ErrTravelTimeUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTravelTimeUnavailable, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned HTTP %d", ErrTravelTimeUnavailable, res.StatusCode)
	}

	c.logger.Debug().
		Str("origin", params.Get("origin")).
		Str("destination", params.Get("destination")).
		Dur("elapsed", time.Since(start)).
		Msg("directions request")
	return body, nil
}
