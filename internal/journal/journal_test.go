package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
)

func openTestRecorder(t *testing.T) Recorder {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	r, err := NewGormRecorder(db, logger.NewNop())
	if err != nil {
		t.Fatalf("NewGormRecorder: %v", err)
	}
	return r
}

func TestNewFinishRecord_SnapshotsAnswersAndOutcome(t *testing.T) {
	answers := domain.FormAnswers{
		SessionCompleted:  true,
		EngagementRating:  4.0,
		IndependenceLevel: domain.IndependenceHigh,
		DifficultyFeel:    domain.DifficultyOK,
		TimeFit:           domain.TimeFitOK,
		PromptsUsedMax:    domain.PromptsLow,
	}
	resp := &domain.PredictionResponse{
		Top1:              &domain.Top1Recommendation{ActivityID: "ACT005"},
		FollowUpQuestions: []string{"q1"},
	}

	rec, err := NewFinishRecord("ACT001", answers, resp)
	if err != nil {
		t.Fatalf("NewFinishRecord: %v", err)
	}
	if rec.ActivityID != "ACT001" || rec.Top1ID != "ACT005" {
		t.Fatalf("record=%+v", rec)
	}

	var decoded domain.FormAnswers
	if err := json.Unmarshal(rec.Answers, &decoded); err != nil {
		t.Fatalf("answers did not round trip: %v", err)
	}
	if decoded.IndependenceLevel != domain.IndependenceHigh {
		t.Fatalf("decoded=%+v", decoded)
	}
}

func TestNewFinishRecord_NilTop1LeavesOutcomeEmpty(t *testing.T) {
	rec, err := NewFinishRecord("ACT001", domain.FormAnswers{}, &domain.PredictionResponse{})
	if err != nil {
		t.Fatalf("NewFinishRecord: %v", err)
	}
	if rec.Top1ID != "" {
		t.Fatalf("top1_id=%q, want empty", rec.Top1ID)
	}
}

func TestGormRecorder_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	r := openTestRecorder(t)

	for i, id := range []string{"ACT001", "ACT004", "ACT005"} {
		rec, err := NewFinishRecord(id, domain.FormAnswers{}, nil)
		if err != nil {
			t.Fatalf("NewFinishRecord: %v", err)
		}
		rec.CreatedAt = time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC)
		if err := r.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := r.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len=%d, want 2", len(recent))
	}
	if recent[0].ActivityID != "ACT005" || recent[1].ActivityID != "ACT004" {
		t.Fatalf("order wrong: %s, %s", recent[0].ActivityID, recent[1].ActivityID)
	}
}

func TestGormRecorder_SkipsEmptyRecords(t *testing.T) {
	ctx := context.Background()
	r := openTestRecorder(t)

	if err := r.Record(ctx, nil); err != nil {
		t.Fatalf("nil record: %v", err)
	}
	if err := r.Record(ctx, &FinishRecord{}); err != nil {
		t.Fatalf("empty record: %v", err)
	}
	recent, err := r.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected no rows, got %d", len(recent))
	}
}
