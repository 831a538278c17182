package router

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/yukikurage/hoc-admin-api/internal/auth"
	"github.com/yukikurage/hoc-admin-api/internal/config"
	"github.com/yukikurage/hoc-admin-api/internal/database"
	"github.com/yukikurage/hoc-admin-api/internal/handlers"
	"github.com/yukikurage/hoc-admin-api/internal/middleware"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/observability"
	"github.com/yukikurage/hoc-admin-api/internal/policy"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

// Deps is what the router needs from the process.
type Deps struct {
	Config *config.Config
	Log    *slog.Logger
	DB     *gorm.DB
	// Metrics may be nil, in which case /metrics is not served.
	Metrics *observability.Prom
	// RateStore backs the login limiter; nil means in-process counters.
	RateStore middleware.CounterStore
}

// New wires repositories, services and handlers and returns the route table.
func New(d Deps) *gin.Engine {
	cfg := d.Config
	expose := cfg.IsDev()

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	operatoreRepo := repository.NewOperatoreRepository(d.DB)
	responsabileRepo := repository.NewResponsabileRepository(d.DB)
	creatorRepo := repository.NewCreatorRepository(d.DB)
	relationRepo := repository.NewRelationRepository(d.DB)
	bookingRepo := repository.NewBookingRepository(d.DB)
	utenteRepo := repository.NewUtenteRepository(d.DB)
	richiestaRepo := repository.NewRichiestaRepository(d.DB)

	// Services
	authService := services.NewAuthService(userRepo, auth.NewHasher(cfg.BcryptCost), auth.NewManager(cfg.JWTSecret, cfg.JWTTTL))
	bookingService := services.NewBookingService(bookingRepo, relationRepo, operatoreRepo, responsabileRepo, creatorRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, d.Metrics, expose)
	operatoreHandler := handlers.NewOperatoreHandler(services.NewOperatoreService(operatoreRepo), expose)
	responsabileHandler := handlers.NewResponsabileHandler(services.NewResponsabileService(responsabileRepo), expose)
	creatorHandler := handlers.NewCreatorHandler(services.NewCreatorService(creatorRepo, responsabileRepo, relationRepo), expose)
	relationHandler := handlers.NewRelationHandler(services.NewRelationService(relationRepo, operatoreRepo, responsabileRepo, userRepo), expose)
	bookingHandler := handlers.NewBookingHandler(bookingService, d.Metrics, expose)
	utenteHandler := handlers.NewUtenteHandler(services.NewUtenteService(utenteRepo), expose)
	richiestaHandler := handlers.NewRichiestaHandler(services.NewRichiestaService(richiestaRepo, utenteRepo, relationRepo, bookingService), expose)
	healthHandler := handlers.NewHealthHandler(func(ctx context.Context) error {
		return database.Ping(ctx, d.DB)
	})

	rateStore := d.RateStore
	if rateStore == nil {
		rateStore = middleware.NewMemoryStore()
	}
	loginLimiter := middleware.NewRateLimiter(rateStore, cfg.LoginRateLimit, cfg.LoginRateWindow, d.Log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	if d.Metrics != nil {
		r.Use(d.Metrics.GinHandleMiddleware())
	}
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.MaxBodyBytes(cfg.MaxBodyBytes))

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	requireAuth := middleware.RequireAuth(authService)
	gate := middleware.NewPolicyGate(relationRepo, expose)
	allow := gate.Require

	api := r.Group("/api")
	api.Use(middleware.RequireJSON())
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", loginLimiter.Middleware(middleware.KeyByIP), authHandler.Login)
			authRoutes.POST("/register", requireAuth, middleware.RequireRole(models.RoleAdmin), allow(policy.ResourceAccount, policy.ActionCreate), authHandler.Register)
			authRoutes.GET("/profile", requireAuth, authHandler.Profile)
		}

		operatori := api.Group("/operatori", requireAuth)
		{
			operatori.GET("", allow(policy.ResourceOperatore, policy.ActionList), operatoreHandler.List)
			operatori.POST("", allow(policy.ResourceOperatore, policy.ActionCreate), operatoreHandler.Create)
			operatori.GET("/:id", allow(policy.ResourceOperatore, policy.ActionRead), operatoreHandler.Get)
			operatori.PUT("/:id", allow(policy.ResourceOperatore, policy.ActionUpdate), operatoreHandler.Update)
			operatori.DELETE("/:id", allow(policy.ResourceOperatore, policy.ActionDelete), operatoreHandler.Delete)
		}

		responsabili := api.Group("/responsabili", requireAuth)
		{
			responsabili.GET("", allow(policy.ResourceResponsabile, policy.ActionList), responsabileHandler.List)
			responsabili.POST("", allow(policy.ResourceResponsabile, policy.ActionCreate), responsabileHandler.Create)
			responsabili.GET("/:id", allow(policy.ResourceResponsabile, policy.ActionRead), responsabileHandler.Get)
			responsabili.PUT("/:id", allow(policy.ResourceResponsabile, policy.ActionUpdate), responsabileHandler.Update)
			responsabili.DELETE("/:id", allow(policy.ResourceResponsabile, policy.ActionDelete), responsabileHandler.Delete)
		}

		creator := api.Group("/creator", requireAuth)
		{
			creator.GET("", allow(policy.ResourceCreator, policy.ActionList), creatorHandler.List)
			creator.POST("", allow(policy.ResourceCreator, policy.ActionCreate), creatorHandler.Create)
			creator.GET("/:id", allow(policy.ResourceCreator, policy.ActionRead), creatorHandler.Get)
			creator.PUT("/:id", allow(policy.ResourceCreator, policy.ActionUpdate), creatorHandler.Update)
			creator.DELETE("/:id", allow(policy.ResourceCreator, policy.ActionDelete), creatorHandler.Delete)
			creator.GET("/:id/responsabili", allow(policy.ResourceCreator, policy.ActionRead), creatorHandler.ListResponsabili)
			creator.POST("/:id/responsabili", allow(policy.ResourceCreator, policy.ActionUpdate), creatorHandler.LinkResponsabile)
		}

		relazioni := api.Group("/relazioni", requireAuth)
		{
			relazioni.GET("", allow(policy.ResourceRelation, policy.ActionList), relationHandler.List)
			relazioni.POST("", allow(policy.ResourceRelation, policy.ActionCreate), relationHandler.Create)
			relazioni.DELETE("/:id", allow(policy.ResourceRelation, policy.ActionDelete), relationHandler.Delete)
		}

		disponibilita := api.Group("/disponibilita", requireAuth)
		{
			disponibilita.GET("", allow(policy.ResourceBooking, policy.ActionList), bookingHandler.List)
			disponibilita.GET("/calendario", allow(policy.ResourceBooking, policy.ActionList), bookingHandler.Calendar)
			disponibilita.GET("/contesto", allow(policy.ResourceBooking, policy.ActionList), bookingHandler.Context)
			disponibilita.POST("", allow(policy.ResourceBooking, policy.ActionCreate), bookingHandler.Submit)
			disponibilita.GET("/:id", allow(policy.ResourceBooking, policy.ActionRead), bookingHandler.Get)
			disponibilita.DELETE("/:id", allow(policy.ResourceBooking, policy.ActionDelete), bookingHandler.Delete)
			disponibilita.GET("/:id/incassi", allow(policy.ResourceBooking, policy.ActionRead), bookingHandler.ListIncassi)
			disponibilita.POST("/:id/incassi", allow(policy.ResourceBooking, policy.ActionUpdate), bookingHandler.AddIncasso)
		}

		utenti := api.Group("/utenti", requireAuth)
		{
			utenti.GET("", allow(policy.ResourceUtente, policy.ActionList), utenteHandler.List)
			utenti.POST("", allow(policy.ResourceUtente, policy.ActionCreate), utenteHandler.Create)
			utenti.GET("/:id", allow(policy.ResourceUtente, policy.ActionRead), utenteHandler.Get)
			utenti.PUT("/:id", allow(policy.ResourceUtente, policy.ActionUpdate), utenteHandler.Update)
			utenti.DELETE("/:id", allow(policy.ResourceUtente, policy.ActionDelete), utenteHandler.Delete)
			utenti.GET("/:id/note", allow(policy.ResourceUtente, policy.ActionRead), utenteHandler.ListNotes)
			utenti.POST("/:id/note", allow(policy.ResourceUtente, policy.ActionUpdate), utenteHandler.AddNote)
		}

		richieste := api.Group("/richieste", requireAuth)
		{
			richieste.GET("", allow(policy.ResourceRichiesta, policy.ActionList), richiestaHandler.List)
			richieste.POST("", allow(policy.ResourceRichiesta, policy.ActionCreate), richiestaHandler.Create)
			richieste.GET("/:id", allow(policy.ResourceRichiesta, policy.ActionRead), richiestaHandler.Get)
			richieste.PUT("/:id", allow(policy.ResourceRichiesta, policy.ActionUpdate), richiestaHandler.Update)
			richieste.DELETE("/:id", allow(policy.ResourceRichiesta, policy.ActionDelete), richiestaHandler.Delete)
		}
	}

	return r
}
