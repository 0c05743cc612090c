// Package huggingface talks to the HuggingFace Inference API and adapts its
// model families onto the classification capability ports.
package huggingface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"insight_server/pkg/apperr"
	"insight_server/pkg/httputil"
	"insight_server/pkg/logger"
)

// =============================================================================
// Inference Client
// =============================================================================

// ClientConfig holds inference API settings.
type ClientConfig struct {
	BaseURL      string
	Token        string
	WaitForModel bool
	Timeout      time.Duration
}

// Client is a thin HTTP client for the hosted inference endpoints. One
// circuit breaker is kept per model so a single dead endpoint cannot trip
// the others.
type Client struct {
	baseURL      string
	token        string
	waitForModel bool
	http         *http.Client
	log          *logger.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewClient creates an inference client.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if log == nil {
		log = logger.Default()
	}
	httpCfg := httputil.DefaultClientConfig()
	if cfg.Timeout > 0 {
		httpCfg.ResponseTimeout = cfg.Timeout
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		token:        cfg.Token,
		waitForModel: cfg.WaitForModel,
		http:         httputil.NewClient(httpCfg),
		log:          log,
		breakers:     make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (c *Client) breaker(model string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok := c.breakers[model]; ok {
		return cb
	}
	log := c.log.WithField("model", model)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        model,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithField("from", from.String()).WithField("to", to.String()).
				Warn("inference circuit breaker state changed")
		},
	})
	c.breakers[model] = cb
	return cb
}

// apiError is the inference API error envelope.
type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// Post sends one inference request for the model and decodes the response
// into out.
func (c *Client) Post(ctx context.Context, model string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperr.Inference(err)
	}

	raw, err := c.breaker(model).Execute(func() (any, error) {
		return c.do(ctx, model, body)
	})
	if err != nil {
		return apperr.Inference(fmt.Errorf("model %s: %w", model, err))
	}

	if err := json.Unmarshal(raw.([]byte), out); err != nil {
		return apperr.Inference(fmt.Errorf("model %s: decode response: %w", model, err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, model string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/models/%s", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.waitForModel {
		req.Header.Set("x-wait-for-model", "true")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.WithContext(ctx).
		WithField("model", model).
		WithField("status", resp.StatusCode).
		WithDuration(time.Since(started)).
		Debug("inference call finished")

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return raw, nil
}
