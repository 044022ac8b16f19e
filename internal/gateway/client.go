package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/internal/infrastructure/observability"
	"github.com/cassiomorais/checkout-bridge/pkg/retry"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Config holds remote gateway connection settings.
type Config struct {
	BaseURL        string
	UserID         string
	APIKey         string
	RequestTimeout time.Duration
	Retry          retry.Config
	Metrics        *observability.Metrics
}

// Client is the low-level HTTP client for the remote payment gateway. It owns
// transport concerns the way a vendored SDK would: authentication headers,
// per-call timeouts, bounded retry on transient failures and a circuit
// breaker. It does not retry business-level rejections.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	apiKey     string
	retryCfg   retry.Config
	breaker    *gobreaker.CircuitBreaker[[]byte]
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		userID:     cfg.UserID,
		apiKey:     cfg.APIKey,
		retryCfg:   retryCfg,
		breaker:    breaker,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// call performs one gateway API call, decoding the JSON response into out
// when out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.metrics != nil {
		start := time.Now()
		defer func() {
			c.metrics.GatewayCallDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		}()
	}

	raw, err := retry.DoWithResult(ctx, c.retryCfg, func() ([]byte, error) {
		data, err := c.breaker.Execute(func() ([]byte, error) {
			return c.roundTrip(ctx, method, path, query, body)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, retry.Unrecoverable(fmt.Errorf("%w: circuit open", domainErrors.ErrRemoteUnavailable))
		}
		return data, err
	})
	if err != nil {
		return err
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("marshal %s request: %w", path, err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("build %s request: %w", path, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-User", c.userID)
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domainErrors.ErrRemoteUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, retry.Unrecoverable(fmt.Errorf("%s: %w", path, domainErrors.ErrTransactionNotFound))
	case resp.StatusCode == http.StatusConflict:
		return nil, retry.Unrecoverable(fmt.Errorf("%s: %w", path, domainErrors.ErrStaleVersion))
	case resp.StatusCode >= 500:
		c.logger.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("gateway server error")
		return nil, fmt.Errorf("%w: status %d", domainErrors.ErrRemoteUnavailable, resp.StatusCode)
	default:
		return nil, retry.Unrecoverable(domainErrors.NewDomainError(
			"remote_api_error",
			fmt.Sprintf("%s returned status %d: %s", path, resp.StatusCode, truncateBody(raw)),
			domainErrors.ErrRemoteAPI,
		))
	}
}

func truncateBody(raw []byte) string {
	const max = 512
	if len(raw) > max {
		return string(raw[:max])
	}
	return string(raw)
}
