// Package journal keeps an append-only history of completed finish
// workflows. It is best-effort by contract: callers log and move on when a
// write fails, so a journal outage never blocks the chain.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
)

type FinishRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActivityID string         `gorm:"column:activity_id;not null;index" json:"activity_id"`
	Answers    datatypes.JSON `gorm:"column:answers" json:"answers"`
	// Top1ID is empty when the service returned no further recommendation.
	Top1ID    string         `gorm:"column:top1_id" json:"top1_id,omitempty"`
	FollowUps datatypes.JSON `gorm:"column:follow_ups" json:"follow_ups,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (FinishRecord) TableName() string { return "finish_records" }

// NewFinishRecord snapshots one completed workflow. resp may carry a nil
// top1.
func NewFinishRecord(activityID string, answers domain.FormAnswers, resp *domain.PredictionResponse) (*FinishRecord, error) {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	rec := &FinishRecord{
		ID:         uuid.New(),
		ActivityID: activityID,
		Answers:    datatypes.JSON(answersJSON),
		CreatedAt:  time.Now().UTC(),
	}
	if resp != nil {
		if resp.Top1 != nil {
			rec.Top1ID = resp.Top1.ActivityID
		}
		if len(resp.FollowUpQuestions) > 0 {
			followUpsJSON, err := json.Marshal(resp.FollowUpQuestions)
			if err != nil {
				return nil, fmt.Errorf("encode follow ups: %w", err)
			}
			rec.FollowUps = datatypes.JSON(followUpsJSON)
		}
	}
	return rec, nil
}

type Recorder interface {
	Record(ctx context.Context, rec *FinishRecord) error
	Recent(ctx context.Context, limit int) ([]*FinishRecord, error)
}

type gormRecorder struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormRecorder(db *gorm.DB, baseLog *logger.Logger) (Recorder, error) {
	if err := db.AutoMigrate(&FinishRecord{}); err != nil {
		return nil, fmt.Errorf("migrate finish_records: %w", err)
	}
	return &gormRecorder{db: db, log: baseLog.With("journal", "GormRecorder")}, nil
}

func (r *gormRecorder) Record(ctx context.Context, rec *FinishRecord) error {
	if rec == nil || rec.ActivityID == "" {
		return nil
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("record finish: %w", err)
	}
	return nil
}

func (r *gormRecorder) Recent(ctx context.Context, limit int) ([]*FinishRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []*FinishRecord
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return out, nil
}

type nopRecorder struct{}

// NewNopRecorder backs store modes with no SQL handle to share.
func NewNopRecorder() Recorder { return nopRecorder{} }

func (nopRecorder) Record(ctx context.Context, rec *FinishRecord) error { return nil }

func (nopRecorder) Recent(ctx context.Context, limit int) ([]*FinishRecord, error) {
	return []*FinishRecord{}, nil
}
