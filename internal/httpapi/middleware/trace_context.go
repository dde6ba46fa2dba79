package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rusith21/Autism-parent-app/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	// Inbound ids are untrusted; anything longer than this is dropped and
	// re-minted rather than propagated into logs.
	maxHeaderIDLen = 128
)

// AttachTraceContext puts a request id and a trace id on the request
// context and echoes both back on the response. Inbound header values win,
// then the active otel span, then a fresh uuid.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := headerID(c, headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		traceID := headerID(c, headerTraceID)
		if traceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			} else {
				traceID = uuid.NewString()
			}
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), reqID)
		ctx = ctxutil.WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(headerTraceID, traceID)
		c.Header(headerRequestID, reqID)
		c.Next()
	}
}

func headerID(c *gin.Context, name string) string {
	v := strings.TrimSpace(c.GetHeader(name))
	if len(v) > maxHeaderIDLen {
		return ""
	}
	return v
}
