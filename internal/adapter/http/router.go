package http

import (
	"time"

	"bankeu-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Routes struct {
	Health         *Handler
	Proposals      *ProposalHandler
	Questionnaires *QuestionnaireHandler
	Settings       *SettingsHandler

	// Gatherer backs /metrics; nil skips the route.
	Gatherer prometheus.Gatherer
	// Redis enables the idempotency middleware on mutating routes; nil skips it.
	Redis    *redis.Client
	IdempTTL time.Duration
}

// Register mounts every route on e. Health and metrics are public; the
// rest require the gateway's actor headers.
func (r Routes) Register(e *echo.Echo) {
	e.GET("/health", r.Health.Health)
	if r.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/questionnaires/questions/:authority", r.Questionnaires.Questions)

	mws := []echo.MiddlewareFunc{middleware.ActorMiddleware()}
	if r.Redis != nil {
		mws = append(mws, middleware.IdempotencyMiddleware(r.Redis, r.IdempTTL))
	}
	g := actorRoutes{e: e, mws: mws}

	g.POST("/proposals", r.Proposals.Create)
	g.GET("/proposals", r.Proposals.List)
	g.GET("/proposals/:id", r.Proposals.Get)
	g.PUT("/proposals/:id", r.Proposals.Update)
	g.DELETE("/proposals/:id", r.Proposals.Delete)
	g.POST("/proposals/:id/decisions", r.Proposals.Decide)

	g.POST("/villages/:village_id/submit", r.Proposals.Submit)
	g.POST("/villages/:village_id/resubmit", r.Proposals.Resubmit)

	g.GET("/proposals/:id/questionnaires/:authority", r.Questionnaires.Get)
	g.PUT("/proposals/:id/questionnaires/:authority", r.Questionnaires.SaveDraft)
	g.POST("/proposals/:id/questionnaires/:authority/submit", r.Questionnaires.Submit)

	g.GET("/settings/submission", r.Settings.GetSubmission)
	g.PUT("/settings/submission", r.Settings.PutSubmission)
	g.GET("/reviewers/me", r.Settings.GetProfile)
	g.PUT("/reviewers/me", r.Settings.PutProfile)
}

// actorRoutes applies the actor chain per route; an empty-prefix group
// would also catch unknown paths.
type actorRoutes struct {
	e   *echo.Echo
	mws []echo.MiddlewareFunc
}

func (g actorRoutes) GET(path string, h echo.HandlerFunc)    { g.e.GET(path, h, g.mws...) }
func (g actorRoutes) POST(path string, h echo.HandlerFunc)   { g.e.POST(path, h, g.mws...) }
func (g actorRoutes) PUT(path string, h echo.HandlerFunc)    { g.e.PUT(path, h, g.mws...) }
func (g actorRoutes) DELETE(path string, h echo.HandlerFunc) { g.e.DELETE(path, h, g.mws...) }
