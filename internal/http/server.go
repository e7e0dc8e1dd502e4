package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"expensedash/internal/dashboard"
	"expensedash/internal/log"
	"expensedash/internal/metrics"
	"expensedash/internal/middleware/ratelimit"
	"expensedash/internal/middleware/security"
	"expensedash/internal/middleware/trace"
	appweb "expensedash/web"
)

// Server renders the dashboard pages and htmx partials.
type Server struct {
	http.Server
	templates *template.Template
	dash      *dashboard.Dashboard
	logger    *log.Logger

	limiter   *ratelimit.Limiter
	detector  *security.Detector
	startedAt time.Time

	shutdownOnce sync.Once
}

// Options configures the server's ambient middleware.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	// TrustedProxies are extra CIDRs whose forwarding headers are honoured.
	TrustedProxies []string
	// Registry, when set, is exposed on /metrics.
	Registry *prometheus.Registry
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, dash *dashboard.Dashboard, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.New("").ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}
	limiterCfg.Logger = logger

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		templates: t,
		dash:      dash,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(limiterCfg),
		detector:  security.NewDetector(logger),
		startedAt: time.Now(),
	}

	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.limiter.Stop()
			return nil, fmt.Errorf("trusted proxies: %w", err)
		}
	}

	mux := http.NewServeMux()

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		s.limiter.Stop()
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /ui/chart", s.handleChart)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if opts.Registry != nil {
		mux.Handle("GET /metrics", metrics.Handler(opts.Registry))
	}

	mountResource(s, mux, transactionView(dash))
	mountResource(s, mux, categoryView(dash))
	mountResource(s, mux, statusView(dash))
	mountResource(s, mux, userView(dash))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Handler = s.detector.Middleware(headers.Middleware(tracer.Middleware(mux)))
	return s, nil
}

// limit applies the per-client rate limit. Only mutations go through it.
func (s *Server) limit(h http.Handler) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").
			TriggerWarningNotification("Too many requests. Please try again later.").
			Write(w)
	})(h)
}

// render executes a template into a buffer first so that a failing template
// never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name,
			log.FieldOperation, log.OpRender)
		InternalServerError("Failed to render page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
