package httpapi

import (
	"net/http"

	"github.com/Rusith21/Autism-parent-app/internal/config"
)

// NewServer wraps the handler in an http.Server tuned from config.
// WriteTimeout stays 0: the recommender call inside the finish workflow can
// legitimately hold a response open for its full 15s budget.
func NewServer(cfg config.HTTPConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
		WriteTimeout:      0,
	}
}
