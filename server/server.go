// Package server exposes the aggregator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pumpfun-api/aggregator"
	"pumpfun-api/metrics"
	"pumpfun-api/model"
)

const requestIDHeader = "X-Request-ID"

// TokenAggregator is satisfied by *aggregator.Aggregator.
type TokenAggregator interface {
	Aggregate(ctx context.Context, mint string) (*model.TokenRecord, error)
}

type Server struct {
	aggregator TokenAggregator
	logger     logrus.FieldLogger
	metrics    *metrics.Metrics
	now        func() time.Time
	mux        *http.ServeMux
}

// New wires the routes. m may be nil, in which case /metrics is not served.
func New(agg TokenAggregator, logger logrus.FieldLogger, m *metrics.Metrics) *Server {
	s := &Server{
		aggregator: agg,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
		mux:        http.NewServeMux(),
	}

	s.handle("GET /api/pumpfun/{mint}", s.handleToken)
	// a missing mint is a bad request rather than an unknown route
	s.handle("GET /api/pumpfun/{$}", s.handleToken)
	s.handle("GET /api/pumpfun", s.handleToken)
	s.handle("GET /health", s.handleHealth)
	s.handle("GET /{$}", s.handleDocs)
	s.handle("/", s.handleNotFound)
	if m != nil {
		s.mux.Handle("GET /metrics", m.Handler())
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Infof("Pump.fun Token API running on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return nil
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	record, err := s.aggregator.Aggregate(r.Context(), r.PathValue("mint"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:    "ok",
		Timestamp: model.FormatTimestamp(s.now()),
	})
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, newDocs())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, model.ErrorResponse{
		Error:   "Not found",
		Message: "Cannot " + r.Method + " " + r.URL.Path,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		resp   = model.ErrorResponse{Error: "Internal server error", Message: aggregator.MsgInternal}
	)
	switch aggregator.KindOf(err) {
	case aggregator.KindInvalidIdentifier:
		status, resp.Error = http.StatusBadRequest, "Invalid mint address format"
	case aggregator.KindNotFound:
		status, resp.Error = http.StatusNotFound, "Token not found"
	}
	var aggErr *aggregator.Error
	if errors.As(err, &aggErr) && aggErr.Message != "" {
		resp.Message = aggErr.Message
	}
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("request_id", w.Header().Get(requestIDHeader)).
			Errorf("API Error on %s", r.URL.Path)
	}
	s.writeJSON(w, status, resp)
}

// handle registers h under pattern, tagging each request with an id and recording it.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(pattern, rec.status, elapsed)
		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"elapsed":    elapsed.String(),
		}).Info("Handled request")
	}))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// status is already sent, the client most likely went away
		s.logger.WithError(err).Debug("Failed to write response body")
	}
}
