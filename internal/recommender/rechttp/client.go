// Package rechttp talks to the real recommendation service over HTTP/JSON.
package rechttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rusith21/Autism-parent-app/internal/config"
	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/platform/httpx"
	"github.com/Rusith21/Autism-parent-app/internal/recommender"
)

const predictPath = "/predict"

type Client struct {
	baseURL   string
	jwtSecret string
	timeout   time.Duration

	httpClient *http.Client
}

func New(cfg config.RecommenderConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("rechttp: base_url required")
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		jwtSecret:  strings.TrimSpace(cfg.JWTSecret),
		timeout:    timeout,
		httpClient: &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg config.RecommenderConfig, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

type predictRequest struct {
	TopK       int            `json:"top_k"`
	FollowupN  int            `json:"followup_n"`
	Context    map[string]any `json:"context"`
	ExcludeIDs []string       `json:"exclude_ids"`
}

// Predict performs one round trip. Timeouts surface as
// recommender.ErrTimeout, non-200 replies as *recommender.StatusError, and
// unparseable success bodies as *recommender.DecodeError. Nothing is
// retried here.
func (c *Client) Predict(ctx context.Context, in recommender.PredictionInput) (*domain.PredictionResponse, error) {
	topK := in.TopK
	if topK <= 0 {
		topK = recommender.DefaultTopK
	}
	followupN := in.FollowupN
	if followupN <= 0 {
		followupN = recommender.DefaultFollowupN
	}
	reqCtx := in.Context
	if reqCtx == nil {
		reqCtx = map[string]any{}
	}
	excludeIDs := in.ExcludeIDs
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	body := predictRequest{
		TopK:       topK,
		FollowupN:  followupN,
		Context:    reqCtx,
		ExcludeIDs: excludeIDs,
	}

	var out domain.PredictionResponse
	if err := c.doJSON(ctx, c.timeout, http.MethodPost, predictPath, body, &out); err != nil {
		return nil, err
	}
	if out.FollowUpQuestions == nil {
		out.FollowUpQuestions = []string{}
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	ctx2 := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx2, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if err := c.setHeaders(req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if httpx.IsTimeoutError(err) {
			return fmt.Errorf("predict: %w", recommender.ErrTimeout)
		}
		return fmt.Errorf("predict: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &recommender.StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if httpx.IsTimeoutError(err) {
			return fmt.Errorf("predict: %w", recommender.ErrTimeout)
		}
		return &recommender.DecodeError{Err: err}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.jwtSecret == "" {
		return nil
	}
	token, err := c.signedToken()
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// signedToken mints a short-lived HS256 token per request; the service only
// checks issuer and freshness.
func (c *Client) signedToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "autism-parent-app",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.jwtSecret))
}
