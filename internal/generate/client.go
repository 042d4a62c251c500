package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/consts"
	"github.com/gitdocai/gitdocai/pkg/logger"
	"github.com/gitdocai/gitdocai/pkg/telemetry"
)

// analysisTimeout bounds the repository analysis performed on the
// fallback path. The analysis is best effort and must not stall the
// degraded result.
const analysisTimeout = 15 * time.Second

// RepoAnalyzer inspects a repository and reports its analysis. The
// GitHub-backed implementation lives in internal/gitrepo.
type RepoAnalyzer interface {
	Analyze(ctx context.Context, repoURL string) (*RepoAnalysis, error)
}

// ClientConfig holds the upstream API client configuration. The base
// URL is injected here; the client never reads the environment.
type ClientConfig struct {
	// BaseURL of the upstream API, e.g. "http://localhost:8000/api/v1".
	// Empty falls back to the built-in default.
	BaseURL string
	// Timeout for a single generation call. Zero means 120s.
	Timeout time.Duration
	// HealthTimeout for the health probe. Zero means 5s.
	HealthTimeout time.Duration
	// Analyzer, when set, replaces the synthesized repository analysis
	// in degraded results with a real one. Optional.
	Analyzer RepoAnalyzer
}

// Client calls the upstream documentation generation API. Transport
// failures never surface as errors from Generate: the client degrades
// to the deterministic mock generator instead.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	healthClient *http.Client
	analyzer     RepoAnalyzer
}

// NewClient creates an upstream API client from injected configuration.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = consts.DefaultUpstreamBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	healthTimeout := cfg.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		healthClient: &http.Client{Timeout: healthTimeout},
		analyzer:     cfg.Analyzer,
	}
}

// BaseURL returns the effective upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate requests documentation for the given request. It never
// returns an error: transport failures (connection refused, DNS,
// timeout, non-2xx status) produce a degraded mock result with
// Success=true, while application-level failures (success=false body,
// malformed JSON on 2xx) produce a clean Result with Success=false.
func (c *Client) Generate(ctx context.Context, req *Request) *Result {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return &Result{Success: false, Error: err.Error()}
	}

	ctx, span := telemetry.StartSpan(ctx, "upstream.generate")
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return &Result{Success: false, Error: fmt.Sprintf("failed to encode request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/generate-docs", bytes.NewReader(body))
	if err != nil {
		return &Result{Success: false, Error: fmt.Sprintf("failed to create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", consts.ProjectName+"/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		telemetry.GetMetrics().RecordUpstreamRequest(ctx, false)
		return c.fallback(ctx, req, fmt.Sprintf("upstream request failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		telemetry.GetMetrics().RecordUpstreamRequest(ctx, false)
		return c.fallback(ctx, req, fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.GetMetrics().RecordUpstreamRequest(ctx, false)
		return c.fallback(ctx, req, fmt.Sprintf("failed to read upstream response: %v", err))
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		// A 2xx with a body we cannot parse is an application-level
		// failure, not a transport failure: no fallback.
		telemetry.GetMetrics().RecordUpstreamRequest(ctx, false)
		logger.Warn("Upstream returned malformed response body",
			zap.String("repo_url", req.RepoURL),
			zap.Error(err))
		return &Result{Success: false, Error: "upstream returned a malformed response"}
	}

	telemetry.GetMetrics().RecordUpstreamRequest(ctx, true)
	if !result.Success && result.Error == "" {
		result.Error = "upstream reported failure without details"
	}
	return &result
}

// fallback produces the degraded mock result and records the event.
// When an analyzer is configured, the synthesized repository analysis
// in the metadata is replaced with a real one; analysis failures keep
// the synthesized analysis and never block the result.
func (c *Client) fallback(ctx context.Context, req *Request, reason string) *Result {
	logger.Warn("Upstream unreachable, serving mock documentation",
		zap.String("repo_url", req.RepoURL),
		zap.String("reason", reason))
	telemetry.GetMetrics().RecordFallback(ctx, "upstream_unreachable")

	result := MockResult(req, reason)
	if c.analyzer != nil {
		actx, cancel := context.WithTimeout(ctx, analysisTimeout)
		defer cancel()
		if analysis, err := c.analyzer.Analyze(actx, req.RepoURL); err == nil {
			result.Metadata["repo_analysis"] = analysis
		} else {
			logger.Debug("Repository analysis unavailable, keeping synthesized analysis",
				zap.String("repo_url", req.RepoURL),
				zap.Error(err))
		}
	}
	return result
}

// HealthCheck probes the upstream health endpoint. Advisory only; it
// never gates Generate.
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.healthClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &status, nil
}
