package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doeshing/qrshield/internal/application/session"
	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/pkg/logger"
	"github.com/doeshing/qrshield/internal/ports"
)

// Scanner is the scan surface the handlers drive.
type Scanner interface {
	ScanImage(ctx context.Context, sess *session.Session, r io.Reader) (domain.ScanResult, error)
	Process(ctx context.Context, sess *session.Session, text string, flow domain.Flow) (domain.ScanOutcome, error)
	Lookup(ctx context.Context, target string) domain.Verdict
}

// Server exposes scanning, history and the query endpoint over HTTP.
type Server struct {
	Scanner        Scanner
	Sessions       *session.Manager
	Exporter       ports.Exporter
	Layout         string
	MaxUploadBytes int64
	Logger         ports.Logger
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "OK")
	})
	r.Get("/", s.handleIndex)
	r.Get("/api/check", s.handleCheck)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Post("/api/scan", s.handleScan)
		r.Post("/api/capture", s.handleCapture)
		r.Get("/api/history", s.handleHistory)
		r.Get("/api/history.csv", s.handleExport)
	})
	r.Delete("/api/session", s.handleEndSession)
	return r
}

// Serve listens on addr until ctx ends, then drains requests and ends every session.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger().Info("http server listening", map[string]interface{}{"addr": addr})

	select {
	case err := <-errCh:
		_ = s.Sessions.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.Sessions.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger().Debug("http request", map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		})
	})
}

func (s *Server) logger() ports.Logger {
	if s.Logger == nil {
		return logger.Nop{}
	}
	return s.Logger
}
