// Package statusapi exposes the miner's current status as JSON over
// HTTP, built on the same gin-based API handler style a pool server
// uses. It is the optional --gui surface called for in the original
// program's terminal dashboard, redesigned here as a scrape-friendly
// endpoint rather than a TUI, which does not fit a headless Go service.
package statusapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anonmine-dev/corexminer/internal/metrics"
)

// StatusResponse is the JSON body returned by GET /status.
type StatusResponse struct {
	HashRate       float64 `json:"hash_rate"`
	SharesAccepted uint64  `json:"shares_accepted"`
	SharesRejected uint64  `json:"shares_rejected"`
	JobsReceived   uint64  `json:"jobs_received"`
	Connected      bool    `json:"connected"`
	Donating       bool    `json:"donating"`
}

// Handlers wraps a metrics.Reporter for the gin route handlers.
type Handlers struct {
	reporter *metrics.Reporter
}

// NewHandlers builds a Handlers bound to reporter.
func NewHandlers(reporter *metrics.Reporter) *Handlers {
	return &Handlers{reporter: reporter}
}

// GetStatus returns the reporter's latest snapshot as JSON.
func (h *Handlers) GetStatus(c *gin.Context) {
	snap := h.reporter.Snapshot()
	c.JSON(http.StatusOK, StatusResponse{
		HashRate:       snap.HashRate,
		SharesAccepted: snap.SharesAccepted,
		SharesRejected: snap.SharesRejected,
		JobsReceived:   snap.JobsReceived,
		Connected:      snap.Connected,
		Donating:       snap.Donating,
	})
}

// SetupRoutes registers the status and metrics routes against router.
func SetupRoutes(router *gin.Engine, h *Handlers, reporter *metrics.Reporter) {
	router.GET("/status", h.GetStatus)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reporter.Registry, promhttp.HandlerOpts{})))
}

// Server runs the gin HTTP server for the status API.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a gin router with the status/metrics routes mounted
// and wraps it in an http.Server bound to addr.
func NewServer(addr string, reporter *metrics.Reporter) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	h := NewHandlers(reporter)
	SetupRoutes(router, h, reporter)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Run starts the server; it blocks until the server stops or errors.
func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
