// Package server serves the QR code HTTP API.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/zeebo/errs/v2"

	"github.com/qrtrack/qrtrack/config"
	"github.com/qrtrack/qrtrack/qr"
	"github.com/qrtrack/qrtrack/tracking"
)

// Recorder stores a tracking document for each rendered code.
type Recorder interface {
	Record(ctx context.Context, data, format string) (tracking.Document, error)
}

type Server struct {
	log     *slog.Logger
	rec     Recorder
	cfg     config.QR
	handler http.Handler
}

func New(log *slog.Logger, rec Recorder, cfg config.QR) *Server {
	s := &Server{log: log, rec: rec, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/createQr", s.createQr)
	mux.HandleFunc("GET /health_check", s.healthCheck)

	s.handler = logRequests(log, cors(mux))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// maxBody bounds a request: a base64 logo of MaxLogoBytes plus the rest
// of the fields. With logos disabled only the fields remain.
func (s *Server) maxBody() int64 {
	return int64(s.cfg.MaxLogoBytes)*4/3 + 64<<10
}

func (s *Server) createQr(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "unable to read body", http.StatusBadRequest)
		return
	}

	data, opts, err := parseCreate(body, s.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, err := qr.Render(data, opts)
	if err != nil {
		s.log.Debug("render failed", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	doc, err := s.rec.Record(r.Context(), data, string(opts.Format))
	if err != nil {
		s.log.Error("tracking failed", "error", err)
		http.Error(w, "unable to record tracking document", http.StatusInternalServerError)
		return
	}
	s.log.Debug("tracked", "id", doc.ID, "format", doc.Format, "bytes", len(img.Data))

	w.Header().Set("Content-Type", img.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Run serves handler on addr until ctx is canceled, then shuts down,
// waiting up to five seconds for requests in flight.
func Run(ctx context.Context, log *slog.Logger, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errs.Wrap(err)
	}
	return Serve(ctx, log, ln, handler)
}

func Serve(ctx context.Context, log *slog.Logger, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return errs.Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errc; !errors.Is(serveErr, http.ErrServerClosed) {
		err = errs.Combine(err, serveErr)
	}
	return errs.Wrap(err)
}
