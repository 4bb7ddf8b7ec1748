package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/pkg/config"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
	"github.com/JosineyAlves/adcloner-sub000/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// implements domain.GraphAPI against the advertising platform's Graph API
type GraphClient struct {
	client      *http.Client
	baseURL     string
	accessToken string
	maxAttempts int
	backoffBase time.Duration
	rateLimiter *rate.Limiter
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// creates a new Graph API client
func NewGraphClient(cfg config.GraphConfig, logger *logger.Logger, metrics *metrics.Metrics) *GraphClient {
	return &GraphClient{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		maxAttempts: cfg.MaxRetries,
		backoffBase: cfg.RetryBackoff,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		logger:      logger,
		metrics:     metrics,
	}
}

// graph error envelope: {"error":{"message","type","code","error_subcode"}}
type errorEnvelope struct {
	Error *domain.RemoteError `json:"error"`
}

type createResponse struct {
	ID               string `json:"id"`
	CopiedCampaignID string `json:"copied_campaign_id"`
}

// Get performs a field-projected read and decodes the response into out.
func (c *GraphClient) Get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.accessToken)

	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/") + "?" + params.Encode()

	body, err := c.doWithRetry(ctx, "read", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.metrics.RecordGraphAPIFailure("read", "json_parse")
		return fmt.Errorf("failed to parse graph response for %s: %w", path, err)
	}
	return nil
}

// Create performs a form-encoded create call and returns the new object id.
// The delivery status of every created object is forced to paused; a create
// call must never leave an object in a spending state.
func (c *GraphClient) Create(ctx context.Context, path string, form url.Values) (string, error) {
	if form == nil {
		form = url.Values{}
	}
	c.forcePaused(path, form)
	form.Set("access_token", c.accessToken)

	op := "create"
	if strings.HasSuffix(path, "/copies") {
		op = "copy"
	}

	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	encoded := form.Encode()

	body, err := c.doWithRetry(ctx, op, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		c.metrics.RecordGraphAPIFailure(op, "json_parse")
		return "", fmt.Errorf("failed to parse create response for %s: %w", path, err)
	}

	// The deep-copy endpoint reports the id under copied_campaign_id.
	id := created.ID
	if created.CopiedCampaignID != "" {
		id = created.CopiedCampaignID
	}
	if id == "" {
		return "", fmt.Errorf("create call %s returned no object id", path)
	}
	return id, nil
}

// forcePaused pins the delivery state of created objects. Regular creates
// take a status field; the deep-copy endpoint takes status_option.
func (c *GraphClient) forcePaused(path string, form url.Values) {
	if strings.HasSuffix(path, "/copies") {
		form.Set("status_option", domain.StatusPaused)
		return
	}
	form.Set("status", domain.StatusPaused)
}

// doWithRetry executes one Graph call under the retry policy: throttling
// error codes back off exponentially (base * 2^attempt, no jitter) up to the
// attempt budget, everything else propagates immediately.
func (c *GraphClient) doWithRetry(ctx context.Context, op string, build func() (*http.Request, error)) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.backoffBase
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	policy.Reset()

	var body []byte
	attempt := 0

	operation := func() error {
		attempt++
		var err error
		body, err = c.doOnce(ctx, op, build)
		if err == nil {
			return nil
		}
		if domain.IsRateLimited(err) {
			c.metrics.RecordGraphAPIRetry(op)
			c.logger.WithContext(ctx).WithError(err).WithField("attempt", attempt).Warn("Graph API rate limited, backing off")
			return err
		}
		return backoff.Permanent(err)
	}

	retries := uint64(0)
	if c.maxAttempts > 1 {
		retries = uint64(c.maxAttempts - 1)
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx))
	if err != nil {
		if domain.IsRateLimited(err) {
			c.metrics.RecordGraphAPIFailure(op, "rate_limit")
			return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrMaxRetriesExceeded, attempt, err)
		}
		return nil, err
	}
	return body, nil
}

// doOnce performs a single HTTP exchange and classifies the outcome.
func (c *GraphClient) doOnce(ctx context.Context, op string, build func() (*http.Request, error)) ([]byte, error) {
	start := time.Now()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordGraphAPIFailure(op, "limiter")
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := build()
	if err != nil {
		c.metrics.RecordGraphAPIFailure(op, "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordGraphAPIFailure(op, "network_error")
		return nil, fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordGraphAPIFailure(op, "read_body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// The platform reports failures in the body for both 2xx and non-2xx
	// responses, so the envelope check comes first.
	var envelope errorEnvelope
	if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error != nil {
		envelope.Error.HTTPStatus = resp.StatusCode
		c.metrics.RecordGraphAPICall(op, "error", duration)
		if envelope.Error.IsAuth() {
			return nil, fmt.Errorf("access token rejected: %w", envelope.Error)
		}
		return nil, envelope.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordGraphAPICall(op, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	c.metrics.RecordGraphAPICall(op, "success", duration)
	return body, nil
}
