package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rusith21/Autism-parent-app/internal/httpapi/response"
	"github.com/Rusith21/Autism-parent-app/internal/store"
)

type HealthHandler struct {
	kv store.KV
}

func NewHealthHandler(kv store.KV) *HealthHandler {
	return &HealthHandler{kv: kv}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Readyz reports ready only when the KV backend answers a ping.
func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.kv != nil {
		if err := h.kv.Ping(c.Request.Context()); err != nil {
			response.RespondError(c, http.StatusServiceUnavailable, response.CodeNotReady, err)
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
