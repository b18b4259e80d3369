package apiapp

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AlonsoPV/baileApp-sub007/internal/config"
	"github.com/AlonsoPV/baileApp-sub007/internal/domain/enums"
	authsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/auth"
	eventsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/events"
	mediasvc "github.com/AlonsoPV/baileApp-sub007/internal/services/media"
	onboardingsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/onboarding"
	profilesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/profiles"
	rolesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/roles"
	votesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/votes"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	ProfileService    *profilesvc.Service
	MediaService      *mediasvc.Service
	EventService      *eventsvc.Service
	VoteService       *votesvc.Service
	RoleService       *rolesvc.Service
	OnboardingService *onboardingsvc.Service
	Postgres          *pgxpool.Pool
	Redis             *goredis.Client
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Logger)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService, deps.Logger)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService, deps.Logger)
	eventsHandler := handlers.NewEventsHandler(deps.EventService, deps.Logger)
	votesHandler := handlers.NewVotesHandler(deps.VoteService, deps.Logger)
	rolesHandler := handlers.NewRolesHandler(deps.RoleService, deps.Logger)
	onboardingHandler := handlers.NewOnboardingHandler(deps.OnboardingService, deps.Logger)
	catalogHandler := handlers.NewCatalogHandler(deps.Config.Community)
	healthHandler := handlers.NewHealthHandler(deps.Postgres, deps.Redis, deps.Logger)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	organizerMW := RequireRole(
		string(enums.CommunityRoleOrganizer),
		string(enums.CommunityRoleAdmin),
	)
	adminMW := RequireRole(string(enums.CommunityRoleAdmin))

	r.Get("/healthz", healthHandler.Health)
	r.Get("/catalog", catalogHandler.Catalog)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Get("/me", authHandler.Me)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/profiles", func(r chi.Router) {
		r.With(authMW).Get("/me", profileHandler.Me)
		r.With(authMW).Patch("/me", profileHandler.Save)
		r.Get("/{id}", profileHandler.Public)
	})

	r.Route("/media", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/photos", mediaHandler.Upload)
		r.Get("/photos", mediaHandler.List)
		r.Delete("/photos/{id}", mediaHandler.Delete)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventsHandler.List)
		r.Get("/trending", votesHandler.Trending)
		r.Get("/{id}", eventsHandler.Get)
		r.With(authMW, organizerMW).Post("/", eventsHandler.Create)
		r.With(authMW).Post("/{id}/vote", votesHandler.Toggle)
	})

	r.Route("/roles", func(r chi.Router) {
		r.With(authMW).Post("/requests", rolesHandler.Submit)
		r.With(authMW).Get("/requests/me", rolesHandler.Status)
		r.With(authMW, adminMW).Get("/requests", rolesHandler.Pending)
		r.With(authMW, adminMW).Post("/requests/{id}/decision", rolesHandler.Decide)
	})

	r.Route("/onboarding", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/status", onboardingHandler.Status)
		r.Post("/complete", onboardingHandler.Complete)
	})
}
