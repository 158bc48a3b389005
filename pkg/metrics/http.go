package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tcpkit/tcpkit/internal/logger"
)

// HTTPServer exposes the process-wide registry on /metrics.
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer builds the exposition server for the given port. The
// registry must have been initialized first.
func NewHTTPServer(port int) (*HTTPServer, error) {
	reg := GetRegistry()
	if reg == nil {
		return nil, fmt.Errorf("metrics registry not initialized")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &HTTPServer{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start serves the metrics endpoint on its own goroutine.
func (h *HTTPServer) Start() {
	go func() {
		logger.Info("metrics server listening", "addr", h.srv.Addr)
		if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", logger.KeyError, err.Error())
		}
	}()
}

// Stop shuts the exposition server down.
func (h *HTTPServer) Stop(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
