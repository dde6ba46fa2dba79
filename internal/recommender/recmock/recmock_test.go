package recmock

import (
	"context"
	"testing"

	"github.com/Rusith21/Autism-parent-app/internal/recommender"
)

func TestPredict_SkipsExcludedIDs(t *testing.T) {
	e := New()
	first, err := e.Predict(context.Background(), recommender.PredictionInput{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if first.Top1 == nil {
		t.Fatalf("expected a recommendation")
	}

	second, err := e.Predict(context.Background(), recommender.PredictionInput{
		ExcludeIDs: []string{first.Top1.ActivityID},
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if second.Top1 == nil || second.Top1.ActivityID == first.Top1.ActivityID {
		t.Fatalf("excluded id recommended again: %+v", second.Top1)
	}
}

func TestPredict_ExhaustedPoolReturnsNilTop1(t *testing.T) {
	e := New()
	var all []string
	for _, c := range e.Catalog {
		all = append(all, c.ActivityID)
	}

	resp, err := e.Predict(context.Background(), recommender.PredictionInput{ExcludeIDs: all})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if resp.Top1 != nil {
		t.Fatalf("expected nil top1 when pool exhausted, got %+v", resp.Top1)
	}
	if resp.FollowUpQuestions == nil {
		t.Fatalf("follow ups must be non-nil")
	}
}

func TestPredict_FollowupNRespected(t *testing.T) {
	e := New()
	resp, err := e.Predict(context.Background(), recommender.PredictionInput{FollowupN: 2})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(resp.FollowUpQuestions) != 2 {
		t.Fatalf("follow ups=%d, want 2", len(resp.FollowUpQuestions))
	}
}
