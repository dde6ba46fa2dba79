package domain

import (
	"fmt"
	"math"
)

// Enum values for the finish-form self report. The wire protocol takes these
// as literal strings, so the constants double as context values.
type IndependenceLevel string

const (
	IndependenceLow    IndependenceLevel = "low"
	IndependenceMedium IndependenceLevel = "medium"
	IndependenceHigh   IndependenceLevel = "high"
)

type DifficultyFeel string

const (
	DifficultyTooEasy DifficultyFeel = "too_easy"
	DifficultyOK      DifficultyFeel = "ok"
	DifficultyTooHard DifficultyFeel = "too_hard"
)

type TimeFit string

const (
	TimeFitOK       TimeFit = "ok"
	TimeFitTooShort TimeFit = "too_short"
	TimeFitTooLong  TimeFit = "too_long"
	TimeFitMismatch TimeFit = "mismatch"
)

type PromptsUsed string

const (
	PromptsLow    PromptsUsed = "low"
	PromptsMedium PromptsUsed = "medium"
	PromptsHigh   PromptsUsed = "high"
)

// FormAnswers is the parent's self report for the activity just finished.
// Built fresh per finish interaction; it lives only as long as the single
// request it produces.
type FormAnswers struct {
	SessionCompleted   bool              `json:"session_completed"`
	EngagementRating   float64           `json:"engagement_rating"`
	IndependenceLevel  IndependenceLevel `json:"independence_level"`
	DifficultyFeel     DifficultyFeel    `json:"difficulty_feel"`
	BehaviorIssue      bool              `json:"behavior_issue"`
	ChildPreference    string            `json:"child_preference"`
	TimeFit            TimeFit           `json:"time_fit"`
	PromptsUsedMax     PromptsUsed       `json:"prompts_used_max"`
	GeneralizationSeen bool              `json:"generalization_seen"`
}

// Validate rejects answers the service contract cannot express. Invalid
// answers never produce a network call.
func (f FormAnswers) Validate() error {
	if f.EngagementRating < 1.0 || f.EngagementRating > 5.0 {
		return fmt.Errorf("engagement_rating %.2f out of range [1.0, 5.0]", f.EngagementRating)
	}
	switch f.IndependenceLevel {
	case IndependenceLow, IndependenceMedium, IndependenceHigh:
	default:
		return fmt.Errorf("independence_level %q invalid", f.IndependenceLevel)
	}
	switch f.DifficultyFeel {
	case DifficultyTooEasy, DifficultyOK, DifficultyTooHard:
	default:
		return fmt.Errorf("difficulty_feel %q invalid", f.DifficultyFeel)
	}
	switch f.TimeFit {
	case TimeFitOK, TimeFitTooShort, TimeFitTooLong, TimeFitMismatch:
	default:
		return fmt.Errorf("time_fit %q invalid", f.TimeFit)
	}
	switch f.PromptsUsedMax {
	case PromptsLow, PromptsMedium, PromptsHigh:
	default:
		return fmt.Errorf("prompts_used_max %q invalid", f.PromptsUsedMax)
	}
	return nil
}

// Context maps the answers plus the current activity id onto the wire
// context. Boolean semantic fields go out as the literal strings "yes"/"no";
// the rating is rounded to one decimal.
func (f FormAnswers) Context(activityID string) map[string]any {
	return map[string]any{
		"activity_id":         activityID,
		"session_completed":   yesNo(f.SessionCompleted),
		"engagement_rating":   math.Round(f.EngagementRating*10) / 10,
		"independence_level":  string(f.IndependenceLevel),
		"difficulty_feel":     string(f.DifficultyFeel),
		"behavior_issue":      yesNo(f.BehaviorIssue),
		"child_preference":    f.ChildPreference,
		"time_fit":            string(f.TimeFit),
		"prompts_used_max":    string(f.PromptsUsedMax),
		"generalization_seen": yesNo(f.GeneralizationSeen),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
