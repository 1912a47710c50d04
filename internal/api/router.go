package api

import (
	"net/http"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
	"github.com/ytsafecheck/backend/internal/health"
	"github.com/ytsafecheck/backend/internal/logger"
	"github.com/ytsafecheck/backend/internal/metrics"
	"github.com/ytsafecheck/backend/internal/middleware"
	"github.com/ytsafecheck/backend/internal/safety"
	"github.com/ytsafecheck/backend/internal/session"
	"github.com/ytsafecheck/backend/internal/websocket"
	"github.com/ytsafecheck/backend/internal/youtube"
)

// Deps are the handlers and shared services the router wires together.
// Metrics and RateLimiter may be nil.
type Deps struct {
	Validation  *youtube.Handlers
	Safety      *safety.Handlers
	Sessions    *session.Handlers
	WebSocket   *websocket.Handler
	Health      *health.Handler
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
	Logger      *logger.Logger
	CORSOrigins []string
}

type Router struct {
	mux     *http.ServeMux
	deps    Deps
	handler http.Handler
}

func NewRouter(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	r := &Router{
		mux:  http.NewServeMux(),
		deps: deps,
	}
	r.setupRoutes()

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Recoverer(deps.Logger.WithComponent("http")),
		middleware.Logging(deps.Logger.WithComponent("http")),
	}
	if deps.Metrics != nil {
		chain = append(chain, metrics.MetricsMiddleware(deps.Metrics))
	}
	chain = append(chain,
		middleware.Timing(deps.Logger.WithComponent("http"), 0),
		middleware.CORS(deps.CORSOrigins),
		middleware.Gzip,
	)
	r.handler = middleware.Chain(r.mux, chain...)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	d := r.deps

	// Health and metrics
	r.mux.HandleFunc("GET /health", d.Health.HealthHandler)
	r.mux.HandleFunc("GET /health/live", d.Health.LivenessHandler)
	r.mux.HandleFunc("GET /health/ready", d.Health.ReadinessHandler)
	if d.Metrics != nil {
		r.mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	// URL validation and previews
	r.mux.HandleFunc("POST /api/v1/validate/url", apperrors.HandleFunc(d.Validation.ValidateURL))
	r.mux.HandleFunc("GET /api/v1/validate/url", apperrors.HandleFunc(d.Validation.ValidateURLQuery))
	r.mux.Handle("GET /api/v1/videos/{video_id}/preview", middleware.ETag(apperrors.HandleFunc(d.Validation.Preview)))

	// Content checks
	r.mux.Handle("POST /api/v1/check", r.limited(apperrors.HandleFunc(d.Safety.Check)))
	r.mux.Handle("GET /api/v1/checks/history", middleware.ETag(apperrors.HandleFunc(d.Safety.History)))
	r.mux.HandleFunc("GET /api/v1/reports/{video_id}", apperrors.HandleFunc(d.Safety.Report))

	// View sessions
	r.mux.HandleFunc("POST /api/v1/sessions", apperrors.HandleFunc(d.Sessions.Create))
	r.mux.HandleFunc("GET /api/v1/sessions/{id}", apperrors.HandleFunc(d.Sessions.Get))
	r.mux.HandleFunc("DELETE /api/v1/sessions/{id}", apperrors.HandleFunc(d.Sessions.Delete))
	r.mux.Handle("POST /api/v1/sessions/{id}/submit", r.limited(apperrors.HandleFunc(d.Sessions.Submit)))
	if d.WebSocket != nil {
		r.mux.HandleFunc("GET /api/v1/sessions/{id}/ws", apperrors.HandleFunc(d.WebSocket.ServeWS))
	}
}

// limited applies the per-client rate limit to routes that run a check.
func (r *Router) limited(h http.Handler) http.Handler {
	if r.deps.RateLimiter == nil {
		return h
	}
	return r.deps.RateLimiter.Handler(h)
}
