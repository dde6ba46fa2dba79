// Package recommender defines the boundary to the remote recommendation
// service: the prediction call, its input shape, and the failure taxonomy.
package recommender

import (
	"context"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
)

// Request sizing defaults, applied when the input leaves them zero.
const (
	DefaultTopK      = 5
	DefaultFollowupN = 3
)

// PredictionInput carries everything one prediction round trip needs.
// Context is sent to the service verbatim.
type PredictionInput struct {
	Context    map[string]any
	TopK       int
	FollowupN  int
	ExcludeIDs []string
}

// Client performs a single best-effort round trip per call. No retries, no
// backoff, no caching; a timeout is surfaced as ErrTimeout and the caller
// decides whether the user retries.
type Client interface {
	Predict(ctx context.Context, in PredictionInput) (*domain.PredictionResponse, error)
}
