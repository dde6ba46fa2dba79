// Package recmock is a deterministic in-process recommendation engine for
// development and tests. It honors exclude_ids the way the real service is
// expected to: an excluded id is never recommended again.
package recmock

import (
	"context"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/recommender"
)

type Engine struct {
	// Catalog is the candidate pool in preference order. Predict returns
	// the first candidate whose id is not excluded.
	Catalog []domain.Top1Recommendation
}

func New() *Engine {
	return &Engine{Catalog: defaultCatalog()}
}

func (e *Engine) Predict(ctx context.Context, in recommender.PredictionInput) (*domain.PredictionResponse, error) {
	_ = ctx

	followupN := in.FollowupN
	if followupN <= 0 {
		followupN = recommender.DefaultFollowupN
	}

	excluded := make(map[string]bool, len(in.ExcludeIDs))
	for _, id := range in.ExcludeIDs {
		excluded[id] = true
	}

	resp := &domain.PredictionResponse{FollowUpQuestions: followUps(followupN)}
	for _, cand := range e.Catalog {
		if excluded[cand.ActivityID] {
			continue
		}
		top1 := cand
		resp.Top1 = &top1
		return resp, nil
	}
	// Pool exhausted: the chain dead-ends, which callers must tolerate.
	return resp, nil
}

func followUps(n int) []string {
	pool := []string{
		"Did the child need fewer prompts than last session?",
		"Was the activity finished in one sitting?",
		"Did the child use the skill outside the session?",
		"Would a shorter session help next time?",
		"Did the child ask to repeat the activity?",
	}
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

func defaultCatalog() []domain.Top1Recommendation {
	return []domain.Top1Recommendation{
		{
			ActivityID:  "ACT004",
			Name:        "Bead Stringing",
			Description: "Fine-motor threading with large wooden beads.",
			WeeklyPlan:  "3 sessions of 10 minutes",
			Prob:        0.91,
		},
		{
			ActivityID:  "ACT005",
			Name:        "Emotion Cards",
			Description: "Matching facial expressions to feeling words.",
			WeeklyPlan:  "2 sessions of 15 minutes",
			Prob:        0.84,
		},
		{
			ActivityID:  "ACT006",
			Name:        "Turn-Taking Game",
			Description: "Simple board game focused on waiting for a turn.",
			WeeklyPlan:  "daily short rounds",
			Prob:        0.77,
		},
		{
			ActivityID: "ACT007",
			Name:       "Sound Scavenger Hunt",
			WeeklyPlan: "2 sessions of 20 minutes",
			Prob:       0.69,
		},
		{
			ActivityID: "ACT008",
			Name:       "Story Sequencing",
			WeeklyPlan: "3 sessions of 10 minutes",
			Prob:       0.62,
		},
		{
			ActivityID: "ACT001",
			Name:       "Color Sorting",
			WeeklyPlan: "3 sessions of 10 minutes",
			Prob:       0.55,
		},
		{
			ActivityID: "ACT002",
			Name:       "Picture Matching",
			WeeklyPlan: "3 sessions of 10 minutes",
			Prob:       0.50,
		},
		{
			ActivityID: "ACT003",
			Name:       "Shape Puzzle",
			WeeklyPlan: "3 sessions of 10 minutes",
			Prob:       0.45,
		},
	}
}
