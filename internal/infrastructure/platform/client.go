// Package platform is the HTTP client for the upstream affiliate platform.
// It implements the onboarding and ledger PlatformClient ports.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appLedger "github.com/affiliate/backend/internal/application/ledger"
	appOnboarding "github.com/affiliate/backend/internal/application/onboarding"
	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/infrastructure/auth"
	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Upstream paths, relative to the configured base URL
const (
	pathCompleteOnboarding = "/onboarding/complete"
	pathSaveProfile        = "/onboarding/profile"
	pathShareMission       = "/affiliate-link/share-mission"
	pathGenerateLink       = "/affiliate-link/generate"
	pathCheckFirstSale     = "/transaction/check-first"
	pathRedeemReward       = "/rewards/redeem"
)

const defaultMaxResponseBytes = 1 << 20

// Client talks JSON over HTTP to the affiliate platform
type Client struct {
	baseURL     string
	timeout     time.Duration
	maxBodySize int64
	httpClient  *http.Client
	limiter     *rate.Limiter
	metrics     *Metrics
	logger      *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records every call on m
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a platform client from config
func NewClient(cfg config.PlatformConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	maxBody := cfg.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = defaultMaxResponseBytes
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		timeout:     cfg.Timeout,
		maxBodySize: maxBody,
		httpClient:  &http.Client{},
		limiter:     rate.NewLimiter(limit, burst),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusResponse is the common {success, message} reply
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SaveProfile posts the profile step payload
func (c *Client) SaveProfile(ctx context.Context, payload appOnboarding.ProfilePayload) error {
	return c.postStatus(ctx, "save_profile", pathSaveProfile, payload)
}

// MarkShareMission records the first share upstream
func (c *Client) MarkShareMission(ctx context.Context) error {
	return c.postStatus(ctx, "share_mission", pathShareMission, nil)
}

// CompleteOnboarding marks the onboarding flow as finished upstream
func (c *Client) CompleteOnboarding(ctx context.Context) error {
	return c.postStatus(ctx, "complete_onboarding", pathCompleteOnboarding, nil)
}

// CheckFirstTransaction asks whether the affiliate has made a first sale
func (c *Client) CheckFirstTransaction(ctx context.Context) (*appOnboarding.TransactionCheckResult, error) {
	var result appOnboarding.TransactionCheckResult
	if err := c.do(ctx, "check_first_transaction", pathCheckFirstSale, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateLink requests a tracked link for a brand
func (c *Client) GenerateLink(ctx context.Context, brandID string) (*appLedger.LinkResult, error) {
	var result appLedger.LinkResult
	body := map[string]string{"brand_id": brandID}
	if err := c.do(ctx, "generate_link", pathGenerateLink, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RedeemReward asks the platform to redeem a reward against the user's balance.
// A success=false reply is returned as-is for the caller to interpret.
func (c *Client) RedeemReward(ctx context.Context, rewardID string) (*appLedger.RedeemResult, error) {
	var result appLedger.RedeemResult
	body := map[string]string{"reward_id": rewardID}
	if err := c.do(ctx, "redeem_reward", pathRedeemReward, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) postStatus(ctx context.Context, op, path string, body any) error {
	var resp statusResponse
	if err := c.do(ctx, op, path, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return affiliate.Rejected(resp.Message)
	}
	return nil
}

// do sends a POST and decodes the JSON reply into out
func (c *Client) do(ctx context.Context, op, path string, body, out any) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "platform."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.SpanAttrPath.String(path)),
	)
	start := time.Now()
	defer func() {
		c.metrics.observe(op, outcomeOf(err), time.Since(start))
		if err != nil {
			telemetry.RecordError(span, err)
			c.logger.Warn("platform call failed",
				zap.String("operation", op),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
		} else {
			telemetry.SetOK(span)
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", affiliate.ErrUpstreamUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := auth.BearerTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", affiliate.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", affiliate.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", affiliate.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var status statusResponse
		_ = json.Unmarshal(respBody, &status)
		return affiliate.Rejected(status.Message)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: invalid response body: %v", affiliate.ErrUpstreamUnavailable, err)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, affiliate.ErrUpstreamRejected):
		return OutcomeRejected
	default:
		return OutcomeUnavailable
	}
}

var (
	_ appOnboarding.PlatformClient = (*Client)(nil)
	_ appLedger.PlatformClient     = (*Client)(nil)
)
