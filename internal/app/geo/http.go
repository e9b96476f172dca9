package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	infraPrometheus "github.com/sifan077/PowerQR/internal/infra/prometheus"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxGeoResponseBytes = 64 << 10

// HTTPConfig configures an ipapi.co compatible lookup service.
type HTTPConfig struct {
	Endpoint  string
	UserAgent string
	Client    *http.Client
	Logger    *zap.Logger
}

// HTTPLocator queries a JSON geolocation API of the form {endpoint}/{ip}/json/.
// Calls go through a circuit breaker so an unhealthy provider is skipped
// without waiting for the lookup timeout on every scan.
type HTTPLocator struct {
	endpoint  string
	userAgent string
	client    *http.Client
	cb        *gobreaker.CircuitBreaker[Location]
}

type ipapiResponse struct {
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
	CountryName string `json:"country_name"`
	Region      string `json:"region"`
	City        string `json:"city"`
}

// NewHTTPLocator builds an HTTPLocator.
func NewHTTPLocator(cfg HTTPConfig) *HTTPLocator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}

	const cbName = "geo-http"
	infraPrometheus.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[Location](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// a provider answering "no data" is healthy
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("geo circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			infraPrometheus.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &HTTPLocator{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		userAgent: cfg.UserAgent,
		client:    client,
		cb:        cb,
	}
}

func (l *HTTPLocator) Locate(ctx context.Context, ip string) (Location, error) {
	if ip == "" {
		return Location{}, ErrNoIP
	}
	return l.cb.Execute(func() (Location, error) {
		return l.fetch(ctx, ip)
	})
}

func (l *HTTPLocator) fetch(ctx context.Context, ip string) (Location, error) {
	reqURL := fmt.Sprintf("%s/%s/json/", l.endpoint, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("geo: build request: %w", err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geo: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Location{}, fmt.Errorf("geo: unexpected status %d", resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxGeoResponseBytes)).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("geo: decode response: %w", err)
	}
	if body.Error {
		return Location{}, fmt.Errorf("%w: %s", ErrNotFound, body.Reason)
	}

	return Location{Country: body.CountryName, Region: body.Region, City: body.City}, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
