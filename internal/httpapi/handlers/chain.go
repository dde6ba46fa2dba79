package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/httpapi/response"
	"github.com/Rusith21/Autism-parent-app/internal/observability"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
	"github.com/Rusith21/Autism-parent-app/internal/session"
)

type ChainHandler struct {
	sessions *session.Orchestrator
	metrics  *observability.Metrics
	log      *logger.Logger
}

func NewChainHandler(sessions *session.Orchestrator, metrics *observability.Metrics, baseLog *logger.Logger) *ChainHandler {
	return &ChainHandler{
		sessions: sessions,
		metrics:  metrics,
		log:      baseLog.With("handler", "ChainHandler"),
	}
}

type chainResponse struct {
	Chain    domain.Chain `json:"chain"`
	Finished []string     `json:"finished"`
}

type finishRequest struct {
	TappedID string             `json:"tapped_id"`
	Answers  domain.FormAnswers `json:"answers"`
}

type finishResponse struct {
	FinishedID        string                     `json:"finished_id"`
	Chain             domain.Chain               `json:"chain"`
	Top1              *domain.Top1Recommendation `json:"top1_recommendation"`
	FollowUpQuestions []string                   `json:"follow_up_questions"`
}

// GetChain returns the current chain and finished ids, bootstrapping a
// fresh chain when storage is empty.
func (h *ChainHandler) GetChain(c *gin.Context) {
	chain, finished, err := h.sessions.Snapshot(c.Request.Context())
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	h.metrics.SetChainLength(len(chain))
	response.RespondOK(c, newChainResponse(chain, finished))
}

// FinishActivity runs the finish workflow for the frontier activity.
func (h *ChainHandler) FinishActivity(c *gin.Context) {
	var req finishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidBody, err)
		return
	}

	start := time.Now()
	res, err := h.sessions.FinishActivity(c.Request.Context(), req.TappedID, req.Answers)
	if err != nil {
		// Guard rejections and invalid forms never reached the service.
		if outcome := predictionOutcome(err); outcome != "" {
			h.metrics.ObservePrediction(outcome, time.Since(start))
		}
		response.RespondMapped(c, err)
		return
	}
	h.metrics.ObservePrediction("ok", time.Since(start))
	h.metrics.IncFinish()
	h.metrics.SetChainLength(len(res.Chain))

	followUps := res.Response.FollowUpQuestions
	if followUps == nil {
		followUps = []string{}
	}
	response.RespondOK(c, finishResponse{
		FinishedID:        res.FinishedID,
		Chain:             res.Chain,
		Top1:              res.Response.Top1,
		FollowUpQuestions: followUps,
	})
}

// ResetChain clears all persisted state and re-seeds a fresh chain.
func (h *ChainHandler) ResetChain(c *gin.Context) {
	chain, err := h.sessions.Reset(c.Request.Context())
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	h.metrics.IncReset()
	h.metrics.SetChainLength(len(chain))
	response.RespondOK(c, newChainResponse(chain, nil))
}

func newChainResponse(chain domain.Chain, finished domain.FinishedSet) chainResponse {
	if chain == nil {
		chain = domain.Chain{}
	}
	out := make([]string, 0, len(finished))
	out = append(out, finished...)
	return chainResponse{Chain: chain, Finished: out}
}

func predictionOutcome(err error) string {
	switch _, code := response.FromError(err); code {
	case response.CodeRecommenderTimeout:
		return "timeout"
	case response.CodeRecommenderStatus:
		return "status_error"
	case response.CodeRecommenderDecode:
		return "decode_error"
	default:
		return ""
	}
}
