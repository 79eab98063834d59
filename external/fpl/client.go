// Package fpl talks to the public Fantasy Premier League API, the source of
// the player catalog and of per-gameweek points.
package fpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/squad-auction/internal/platform/logging"
	"github.com/riskibarqy/squad-auction/internal/platform/resilience"
	"github.com/riskibarqy/squad-auction/internal/usecase"
)

const defaultBaseURL = "https://fantasy.premierleague.com/api"

var errFPLTransient = crerr.New("fpl transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client implements the catalog and gameweek score providers of the usecase
// layer. The API is unauthenticated; resilience comes from retries with
// backoff, a circuit breaker and request deduplication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)),
	}
}

type bootstrapEnvelope struct {
	Teams []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		ShortName string `json:"short_name"`
	} `json:"teams"`
	Elements []struct {
		ID          int64  `json:"id"`
		Team        int64  `json:"team"`
		FirstName   string `json:"first_name"`
		SecondName  string `json:"second_name"`
		WebName     string `json:"web_name"`
		ElementType int    `json:"element_type"`
		NowCost     int64  `json:"now_cost"`
	} `json:"elements"`
}

func (c *Client) FetchBootstrap(ctx context.Context) (usecase.CatalogBundle, error) {
	var envelope bootstrapEnvelope
	if err := c.doJSON(ctx, "/bootstrap-static/", &envelope); err != nil {
		return usecase.CatalogBundle{}, fmt.Errorf("fetch bootstrap: %w", err)
	}

	bundle := usecase.CatalogBundle{
		Teams:   make([]usecase.ExternalTeam, 0, len(envelope.Teams)),
		Players: make([]usecase.ExternalPlayer, 0, len(envelope.Elements)),
	}
	for _, t := range envelope.Teams {
		bundle.Teams = append(bundle.Teams, usecase.ExternalTeam{
			ExternalID: t.ID,
			Name:       t.Name,
			ShortName:  t.ShortName,
		})
	}
	for _, e := range envelope.Elements {
		bundle.Players = append(bundle.Players, usecase.ExternalPlayer{
			ExternalID:     e.ID,
			TeamExternalID: e.Team,
			FirstName:      e.FirstName,
			SecondName:     e.SecondName,
			WebName:        e.WebName,
			ElementType:    e.ElementType,
			NowCostTenths:  e.NowCost,
		})
	}

	return bundle, nil
}

type eventLiveEnvelope struct {
	Elements []struct {
		ID    int64 `json:"id"`
		Stats struct {
			TotalPoints int64 `json:"total_points"`
		} `json:"stats"`
	} `json:"elements"`
}

func (c *Client) FetchGameweekPoints(ctx context.Context, gameweek int) ([]usecase.ExternalGameweekScore, error) {
	if gameweek <= 0 {
		return nil, fmt.Errorf("gameweek must be greater than zero")
	}

	var envelope eventLiveEnvelope
	path := fmt.Sprintf("/event/%d/live/", gameweek)
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch gameweek live gameweek=%d: %w", gameweek, err)
	}

	out := make([]usecase.ExternalGameweekScore, 0, len(envelope.Elements))
	for _, element := range envelope.Elements {
		out = append(out, usecase.ExternalGameweekScore{
			PlayerExternalID: element.ID,
			Points:           element.Stats.TotalPoints,
		})
	}

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: fpl api is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && crerr.Is(reqErr, errFPLTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fpl payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFPLTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFPLTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: fpl status=%d", errFPLTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("fpl status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fpl request failed")
	}
	c.logger.WarnContext(ctx, "fpl request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
