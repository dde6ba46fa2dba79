package domain

import "strings"

// Top1Recommendation is the single highest-probability next activity
// returned by the recommendation service.
type Top1Recommendation struct {
	ActivityID          string  `json:"activity_id"`
	Name                string  `json:"name,omitempty"`
	Description         string  `json:"description,omitempty"`
	DetailedDescription string  `json:"detailed_description,omitempty"`
	WeeklyPlan          string  `json:"weekly_plan,omitempty"`
	Prob                float64 `json:"prob,omitempty"`
}

// Activity converts the recommendation into a chain entry, falling back to
// the id when the service omits a display name.
func (t Top1Recommendation) Activity() Activity {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = t.ActivityID
	}
	return Activity{ID: t.ActivityID, Name: name, WeeklyPlan: t.WeeklyPlan}
}

// PredictionResponse is the decoded service result. Top1 is nil when the
// service had no candidate left to recommend; FollowUpQuestions is never
// nil after decoding.
type PredictionResponse struct {
	Top1              *Top1Recommendation `json:"top1_recommendation"`
	FollowUpQuestions []string            `json:"follow_up_questions"`
}
