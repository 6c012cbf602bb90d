package web

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// maxBodyBytes bounds JSON request bodies; audit uploads can be large.
const maxBodyBytes = 5 << 20

// NewServer creates and configures the HTTP server for the degreeplan API and pages.
func NewServer(db *sql.DB, cfg *config.Config, adv *advisor.Advisor, logger *zap.Logger, version string) (*http.Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		advisor:  adv,
		logger:   logger,
		validate: validator.New(),
		renderer: NewRenderer(templateSub, version, logger),
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Web.Bind, cfg.Web.Port),
		Handler:           h.routes(staticSub),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func (h *Handlers) routes(static fs.FS) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/evaluations", http.StatusFound)
	})
	mux.HandleFunc("GET /health", h.HandleHealth)

	// JSON API
	mux.HandleFunc("GET /api/majors", h.HandleMajors)
	mux.HandleFunc("POST /api/major-progress", h.HandleMajorProgress)
	mux.HandleFunc("POST /api/suggestions", h.HandleSuggestions)
	mux.HandleFunc("POST /api/advisor", h.HandleAdvisor)
	mux.HandleFunc("POST /api/preview", h.HandlePreview)
	mux.HandleFunc("GET /api/evaluations", h.HandleEvaluationsAPI)
	mux.HandleFunc("GET /api/evaluations/{id}", h.HandleEvaluationAPI)
	mux.HandleFunc("POST /api/evaluations/purge", h.HandlePurge)

	// Pages
	mux.HandleFunc("GET /majors", h.HandleMajorsPage)
	mux.HandleFunc("GET /evaluations", h.HandleEvaluationsPage)
	mux.HandleFunc("GET /evaluations/{id}", h.HandleEvaluationPage)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return requestLogger(h.logger, securityHeaders(cors(mux)))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// cors opens the JSON API to browser clients on other origins.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		}
		if rec.status >= 500 {
			logger.Warn("request", fields...)
		} else {
			logger.Debug("request", fields...)
		}
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("degreeplan web running", zap.String("url", "http://"+srv.Addr))

	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
