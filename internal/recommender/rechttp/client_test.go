package rechttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Rusith21/Autism-parent-app/internal/config"
	"github.com/Rusith21/Autism-parent-app/internal/recommender"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testConfig() config.RecommenderConfig {
	return config.RecommenderConfig{
		Mode:    "http",
		BaseURL: "http://recsvc",
		Timeout: config.Duration{Duration: 2 * time.Second},
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestPredict_RequestShape(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPost {
				t.Fatalf("method=%s", req.Method)
			}
			if req.URL.Path != "/predict" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if ct := req.Header.Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content-type=%q", ct)
			}

			var in map[string]json.RawMessage
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			for _, k := range []string{"top_k", "followup_n", "context", "exclude_ids"} {
				if _, ok := in[k]; !ok {
					t.Fatalf("missing body key %q", k)
				}
			}
			if len(in) != 4 {
				t.Fatalf("body has %d keys, want 4: %v", len(in), in)
			}

			var topK int
			if err := json.Unmarshal(in["top_k"], &topK); err != nil || topK != 5 {
				t.Fatalf("top_k=%d err=%v, want default 5", topK, err)
			}
			var followupN int
			if err := json.Unmarshal(in["followup_n"], &followupN); err != nil || followupN != 3 {
				t.Fatalf("followup_n=%d err=%v, want default 3", followupN, err)
			}
			var reqCtx map[string]any
			if err := json.Unmarshal(in["context"], &reqCtx); err != nil {
				t.Fatalf("context: %v", err)
			}
			if reqCtx["activity_id"] != "ACT001" || reqCtx["session_completed"] != "yes" {
				t.Fatalf("context not passed verbatim: %v", reqCtx)
			}
			var exclude []string
			if err := json.Unmarshal(in["exclude_ids"], &exclude); err != nil || exclude == nil {
				t.Fatalf("exclude_ids must be an array, got %s", in["exclude_ids"])
			}
			if len(exclude) != 2 || exclude[0] != "ACT000" || exclude[1] != "ACT001" {
				t.Fatalf("exclude_ids=%v", exclude)
			}

			return jsonResponse(http.StatusOK, `{
				"top1_recommendation": {"activity_id": "ACT009", "name": "Bead Stringing", "weekly_plan": "3x10min", "prob": 0.82},
				"follow_up_questions": ["q1", "q2"]
			}`), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}

	resp, err := c.Predict(context.Background(), recommender.PredictionInput{
		Context: map[string]any{
			"activity_id":       "ACT001",
			"session_completed": "yes",
		},
		ExcludeIDs: []string{"ACT000", "ACT001"},
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if resp.Top1 == nil || resp.Top1.ActivityID != "ACT009" {
		t.Fatalf("top1=%+v", resp.Top1)
	}
	if resp.Top1.Prob != 0.82 {
		t.Fatalf("prob=%v", resp.Top1.Prob)
	}
	if len(resp.FollowUpQuestions) != 2 {
		t.Fatalf("follow ups=%v", resp.FollowUpQuestions)
	}
}

func TestPredict_EmptyExcludeListEncodesAsArray(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			if !strings.Contains(string(raw), `"exclude_ids":[]`) {
				t.Fatalf("nil exclude list must encode as [], body=%s", raw)
			}
			return jsonResponse(http.StatusOK, `{}`), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	if _, err := c.Predict(context.Background(), recommender.PredictionInput{}); err != nil {
		t.Fatalf("Predict: %v", err)
	}
}

func TestPredict_MissingFieldsDecodeSoft(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"top1_recommendation": null}`), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	resp, err := c.Predict(context.Background(), recommender.PredictionInput{})
	if err != nil {
		t.Fatalf("missing top1 must not error: %v", err)
	}
	if resp.Top1 != nil {
		t.Fatalf("top1=%+v, want nil", resp.Top1)
	}
	if resp.FollowUpQuestions == nil || len(resp.FollowUpQuestions) != 0 {
		t.Fatalf("follow ups=%v, want empty slice", resp.FollowUpQuestions)
	}
}

func TestPredict_ProbDefaultsToZero(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"top1_recommendation": {"activity_id": "X"}}`), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	resp, err := c.Predict(context.Background(), recommender.PredictionInput{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if resp.Top1 == nil || resp.Top1.Prob != 0.0 {
		t.Fatalf("top1=%+v, want prob 0.0", resp.Top1)
	}
}

func TestPredict_Non200ReturnsStatusError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusServiceUnavailable, "model warming up"), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = c.Predict(context.Background(), recommender.PredictionInput{})
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *recommender.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want StatusError, got %T: %v", err, err)
	}
	if statusErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", statusErr.Status)
	}
	if statusErr.Body != "model warming up" {
		t.Fatalf("body=%q", statusErr.Body)
	}
}

func TestPredict_MalformedSuccessBodyReturnsDecodeError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"top1_recommendation": `), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = c.Predict(context.Background(), recommender.PredictionInput{})
	var decodeErr *recommender.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("want DecodeError, got %T: %v", err, err)
	}
}

func TestPredict_DeadlineSurfacesAsErrTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = config.Duration{Duration: 20 * time.Millisecond}

	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}),
	}

	c, err := NewWithHTTPClient(cfg, client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = c.Predict(context.Background(), recommender.PredictionInput{})
	if !errors.Is(err, recommender.ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
}

func TestPredict_JWTSecretAttachesBearer(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "local-secret"

	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			auth := req.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				t.Fatalf("authorization=%q", auth)
			}
			if parts := strings.Split(strings.TrimPrefix(auth, "Bearer "), "."); len(parts) != 3 {
				t.Fatalf("bearer token is not a JWT: %q", auth)
			}
			return jsonResponse(http.StatusOK, `{}`), nil
		}),
	}

	c, err := NewWithHTTPClient(cfg, client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	if _, err := c.Predict(context.Background(), recommender.PredictionInput{}); err != nil {
		t.Fatalf("Predict: %v", err)
	}
}

func TestPredict_NoAuthorizationWithoutSecret(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if auth := req.Header.Get("Authorization"); auth != "" {
				t.Fatalf("unexpected authorization header %q", auth)
			}
			return jsonResponse(http.StatusOK, `{}`), nil
		}),
	}

	c, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	if _, err := c.Predict(context.Background(), recommender.PredictionInput{}); err != nil {
		t.Fatalf("Predict: %v", err)
	}
}
