// Package healthserver exposes the supervisor's state and Prometheus
// metrics over HTTP while a run is in progress.
package healthserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"simlaunch/internal/supervisor"
	"simlaunch/pkg/logx"
)

const readHeaderTimeout = 5 * time.Second

// Server serves /healthz and /metrics for one supervised run.
type Server struct {
	sup      *supervisor.Supervisor
	logger   *logx.Logger
	listener net.Listener
	httpSrv  *http.Server
}

func New(addr string, sup *supervisor.Supervisor) *Server {
	s := &Server{
		sup:    sup,
		logger: logx.NewLogger("healthserver"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Start begins listening and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("health server listen on %s: %w", s.httpSrv.Addr, err)
	}
	s.listener = ln
	s.logger.Info("health endpoint on http://%s", ln.Addr())

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("health server: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpSrv.Addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting for in-flight requests up to ctx.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("health server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.sup.Status()); err != nil {
		s.logger.Error("failed to encode status: %v", err)
	}
}
