// Package gatekeeper verifies bearer tokens against the account service by
// introspection. Verified principals are cached briefly so hot request paths
// do not introspect on every call.
package gatekeeper

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/platform/cache"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
	"github.com/riskibarqy/squad-auction/internal/platform/resilience"
	"github.com/riskibarqy/squad-auction/internal/usecase"
)

const defaultPrincipalTTL = 30 * time.Second

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	PrincipalTTL   time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	principals    *cache.Store
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	ttl := cfg.PrincipalTTL
	if ttl <= 0 {
		ttl = defaultPrincipalTTL
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		principals:    cache.NewStore(ttl),
		breaker:       resilience.NewCircuitBreaker(resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)),
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (manager.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return manager.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	out, err := c.principals.GetOrLoad(hashToken(token), func() (any, error) {
		return c.introspect(ctx, token)
	})
	if err != nil {
		return manager.Principal{}, err
	}

	principal, ok := out.(manager.Principal)
	if !ok {
		return manager.Principal{}, fmt.Errorf("unexpected cached principal type %T", out)
	}
	return principal, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active    bool   `json:"active"`
	ManagerID string `json:"manager_id"`
	Username  string `json:"username"`
	Admin     bool   `json:"admin"`
}

func (c *Client) introspect(ctx context.Context, token string) (manager.Principal, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "gatekeeper circuit breaker rejected request", "state", c.breaker.State())
		return manager.Principal{}, fmt.Errorf("%w: account service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return manager.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return manager.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return manager.Principal{}, fmt.Errorf("%w: request introspection: %v", usecase.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.breaker.RecordSuccess()
		return manager.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.breaker.RecordFailure()
		return manager.Principal{}, fmt.Errorf("read introspect response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.breaker.RecordFailure()
		c.logger.WarnContext(ctx, "gatekeeper introspection non-200", "status_code", resp.StatusCode)
		return manager.Principal{}, fmt.Errorf("%w: introspection failed with status %d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}
	c.breaker.RecordSuccess()

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return manager.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return manager.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.ManagerID) == "" {
		return manager.Principal{}, fmt.Errorf("invalid introspect response: manager_id is empty")
	}

	return manager.Principal{
		ManagerID: decoded.ManagerID,
		Username:  decoded.Username,
		Admin:     decoded.Admin,
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
