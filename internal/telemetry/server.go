package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// MetricsServer — HTTP-сервер с /metrics и /healthz.
type MetricsServer struct {
	server *http.Server
	ln     net.Listener
	logger *slog.Logger
}

// StartMetricsServer начинает слушать addr и обслуживать метрики в фоне.
func StartMetricsServer(addr string, m *Metrics, logger *slog.Logger) (*MetricsServer, error) {
	startTime := time.Now()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime).Round(time.Second))
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	s := &MetricsServer{
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		logger: logger,
	}

	go func() {
		logger.Info("metrics listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	return s, nil
}

// Addr возвращает фактический адрес (полезно при ":0").
func (s *MetricsServer) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown останавливает сервер с таймаутом 5 секунд.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	s.logger.Info("metrics server stopped")
	return nil
}
