package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Session   string `json:"session"`
	Timestamp string `json:"timestamp"`
}

// HealthHandler reports liveness plus the current session status.
func HealthHandler(version string, sessionStatus func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:    "healthy",
			Service:   "hyprlingo",
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if sessionStatus != nil {
			status.Session = sessionStatus()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}

// NewMux serves /metrics and /health.
func NewMux(version string, sessionStatus func() string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", HealthHandler(version, sessionStatus))
	return mux
}

// ServeMetrics runs the metrics endpoint until ctx is cancelled.
func ServeMetrics(ctx context.Context, addr, version string, sessionStatus func() string) error {
	logger := Component("metrics")
	server := &http.Server{
		Addr:         addr,
		Handler:      NewMux(version, sessionStatus),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics enabled at /metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
