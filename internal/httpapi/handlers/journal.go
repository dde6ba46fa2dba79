package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rusith21/Autism-parent-app/internal/httpapi/response"
	"github.com/Rusith21/Autism-parent-app/internal/journal"
)

const journalLimitMax = 100

type JournalHandler struct {
	journal journal.Recorder
}

func NewJournalHandler(rec journal.Recorder) *JournalHandler {
	return &JournalHandler{journal: rec}
}

type journalEntry struct {
	ID                string          `json:"id"`
	ActivityID        string          `json:"activity_id"`
	Answers           json.RawMessage `json:"answers"`
	Top1ID            string          `json:"top1_id,omitempty"`
	FollowUpQuestions json.RawMessage `json:"follow_up_questions,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type journalResponse struct {
	Records []journalEntry `json:"records"`
}

// Recent lists finish records, newest first. ?limit= caps the page size.
func (h *JournalHandler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, response.CodeInvalidBody, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	if limit > journalLimitMax {
		limit = journalLimitMax
	}

	records, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}

	entries := make([]journalEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, journalEntry{
			ID:                rec.ID.String(),
			ActivityID:        rec.ActivityID,
			Answers:           json.RawMessage(rec.Answers),
			Top1ID:            rec.Top1ID,
			FollowUpQuestions: json.RawMessage(rec.FollowUps),
			CreatedAt:         rec.CreatedAt,
		})
	}
	response.RespondOK(c, journalResponse{Records: entries})
}
