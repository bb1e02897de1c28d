package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"legalease/internal/config"
	"legalease/internal/middleware"
	"legalease/internal/models"
	"legalease/internal/service"
)

type Authenticator interface {
	Register(ctx context.Context, input service.RegisterInput) (models.Identity, error)
	Authenticate(ctx context.Context, input service.LoginInput) (service.AuthResult, error)
	Revoke(ctx context.Context, token string) error
}

type ProfileManager interface {
	Own(ctx context.Context, p models.Principal) (models.LawyerProfile, bool, error)
	Create(ctx context.Context, p models.Principal, input service.ProfileInput) (models.LawyerProfile, error)
}

type LawyerDirectory interface {
	ListAvailable(ctx context.Context, p models.Principal) ([]service.DirectoryEntry, error)
}

type CaseManager interface {
	Create(ctx context.Context, p models.Principal, input service.CreateCaseInput) (models.Case, error)
	ListForClient(ctx context.Context, p models.Principal) ([]models.Case, error)
	ListForLawyer(ctx context.Context, p models.Principal) ([]models.Case, error)
	Stats(ctx context.Context, p models.Principal) (models.CaseStats, error)
	Transition(ctx context.Context, p models.Principal, caseID string, target string) (models.Case, error)
	ScheduleAppointment(ctx context.Context, p models.Principal, caseID string, input service.AppointmentInput) (models.Case, error)
	Get(ctx context.Context, p models.Principal, caseID string) (models.Case, error)
	Attachment(ctx context.Context, p models.Principal, caseID string) (string, bool, error)
}

type DashboardProvider interface {
	ForLawyer(ctx context.Context, token string) (service.Dashboard, error)
}

// PingFunc reports whether one backing dependency is reachable.
type PingFunc func(ctx context.Context) error

type Dependencies struct {
	Auth         Authenticator
	Resolver     middleware.Resolver
	Profiles     ProfileManager
	Directory    LawyerDirectory
	Cases        CaseManager
	Dashboard    DashboardProvider
	HealthChecks map[string]PingFunc
}

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	auth         Authenticator
	resolver     middleware.Resolver
	profiles     ProfileManager
	directory    LawyerDirectory
	cases        CaseManager
	dashboard    DashboardProvider
	healthChecks map[string]PingFunc
	authLimiter  *middleware.IPRateLimiter
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	return HandlerSet{
		log:          log.With().Str("component", "http").Logger(),
		cfg:          cfg,
		auth:         deps.Auth,
		resolver:     deps.Resolver,
		profiles:     deps.Profiles,
		directory:    deps.Directory,
		cases:        deps.Cases,
		dashboard:    deps.Dashboard,
		healthChecks: deps.HealthChecks,
		authLimiter:  middleware.NewIPRateLimiter(cfg.Limits.AuthRequests, cfg.Limits.AuthWindow),
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	api := router.Group("")
	api.Use(middleware.Session(h.resolver, h.cfg.Security.CookieName))

	limited := middleware.RateLimit(h.authLimiter)

	lawyerAuth := api.Group("/auth")
	{
		lawyerAuth.POST("/signup", limited, h.signup(models.RoleLawyer))
		lawyerAuth.POST("/login", limited, h.login(models.RoleLawyer))
		lawyerAuth.GET("/verifyLawyer", middleware.RequireLawyer(), h.VerifyLawyer)
		lawyerAuth.GET("/logout", h.Logout)
	}

	clientAuth := api.Group("/clientAuth")
	{
		clientAuth.POST("/signup", limited, h.signup(models.RoleClient))
		clientAuth.POST("/login", limited, h.login(models.RoleClient))
		clientAuth.GET("/verifyUser", middleware.RequireClient(), h.VerifyClient)
		clientAuth.GET("/logout", h.Logout)
	}

	profiles := api.Group("/lawyerProfile")
	{
		profiles.GET("/getProfile", middleware.RequireClient(), h.ListProfiles)
		profiles.GET("/getProfileById", middleware.RequireLawyer(), h.OwnProfile)
		profiles.POST("/createProfile", middleware.RequireLawyer(), h.CreateProfile)
	}

	api.GET("/lawyer/dashboard", middleware.RequireLawyer(), h.Dashboard)

	cases := api.Group("/cases")
	{
		cases.POST("/createCase", middleware.RequireClient(), h.CreateCase)
		cases.GET("/getClientCase", middleware.RequireClient(), h.ClientCases)
		cases.GET("/getLawyerCase", middleware.RequireLawyer(), h.LawyerCases)
		cases.GET("/getLawyerStats", middleware.RequireLawyer(), h.LawyerStats)

		authed := cases.Group("/:caseId", middleware.RequireAuthenticated())
		authed.GET("", h.GetCase)
		authed.GET("/attachment", h.CaseAttachment)
		authed.PATCH("/status", middleware.RequireLawyer(), h.TransitionCase)
		authed.PUT("/appointment", middleware.RequireLawyer(), h.ScheduleAppointment)
	}
}
