// Package response defines the API error envelope and the mapping from
// workflow errors onto HTTP status/code pairs.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rusith21/Autism-parent-app/internal/recommender"
	"github.com/Rusith21/Autism-parent-app/internal/session"
)

// Error codes surfaced in the envelope. Clients branch on these, not on
// message text.
const (
	CodeInvalidBody        = "invalid_body"
	CodeInvalidForm        = "invalid_form"
	CodeFinishInFlight     = "finish_in_flight"
	CodeRecommenderTimeout = "recommender_timeout"
	CodeRecommenderStatus  = "recommender_status"
	CodeRecommenderDecode  = "recommender_decode"
	CodeStoreFailure       = "store_failure"
	CodeNotReady           = "not_ready"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondMapped classifies a workflow error and writes its envelope.
func RespondMapped(c *gin.Context, err error) {
	status, code := FromError(err)
	RespondError(c, status, code, err)
}

// FromError maps workflow errors onto a status and code. Unrecognized
// errors fall through to a plain 500 store_failure since storage is the
// only remaining failure source below the orchestrator.
func FromError(err error) (int, string) {
	var statusErr *recommender.StatusError
	var decodeErr *recommender.DecodeError
	switch {
	case errors.Is(err, session.ErrFinishInFlight):
		return http.StatusConflict, CodeFinishInFlight
	case errors.Is(err, session.ErrInvalidForm):
		return http.StatusBadRequest, CodeInvalidForm
	case errors.Is(err, recommender.ErrTimeout):
		return http.StatusGatewayTimeout, CodeRecommenderTimeout
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, CodeRecommenderStatus
	case errors.As(err, &decodeErr):
		return http.StatusBadGateway, CodeRecommenderDecode
	default:
		return http.StatusInternalServerError, CodeStoreFailure
	}
}
