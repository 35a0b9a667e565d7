package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/textml/classifier-service/internal/handlers"
	"github.com/textml/classifier-service/internal/services"
)

type Server struct {
	httpAddr         string
	maxBodyBytes     int64
	inferenceService *services.InferenceService
}

func NewServer(httpAddr string, maxBodyBytes int64, inferenceService *services.InferenceService) *Server {
	return &Server{
		httpAddr:         httpAddr,
		maxBodyBytes:     maxBodyBytes,
		inferenceService: inferenceService,
	}
}

// Handler builds the full HTTP handler: routes plus the body-size cap.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	inferenceHandler := handlers.NewInferenceHandler(s.inferenceService)
	inferenceHandler.RegisterRoutes(mux)

	return s.limitBody(mux)
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("HTTP server starting",
		"addr", s.httpAddr,
		"endpoints", []string{"/ping", "/invocations"},
		"labels", s.inferenceService.Labels())

	srv := &http.Server{
		Addr:              s.httpAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// limitBody caps request bodies so oversized payloads surface as a
// validation failure instead of exhausting memory.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
