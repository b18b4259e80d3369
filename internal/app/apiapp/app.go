package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AlonsoPV/baileApp-sub007/internal/config"
	s3infra "github.com/AlonsoPV/baileApp-sub007/internal/infra/s3"
	pgrepo "github.com/AlonsoPV/baileApp-sub007/internal/repo/postgres"
	redrepo "github.com/AlonsoPV/baileApp-sub007/internal/repo/redis"
	authsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/auth"
	eventsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/events"
	mediasvc "github.com/AlonsoPV/baileApp-sub007/internal/services/media"
	onboardingsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/onboarding"
	profilesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/profiles"
	ratesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/rate"
	rolesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/roles"
	votesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/votes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	mediaRepo := pgrepo.NewMediaRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)
	voteRepo := pgrepo.NewVoteRepo(pool)
	roleRequestRepo := pgrepo.NewRoleRequestRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, cfg.Auth.RefreshTTL)
	profileService := profilesvc.NewService(profileRepo, cacheRepo, profilesvc.Config{
		PrimaryTimeout:  cfg.Save.PrimaryTimeout,
		FallbackTimeout: cfg.Save.FallbackTimeout,
		CacheTTL:        cfg.Save.CacheTTL,
	}, log)
	eventService := eventsvc.NewService(eventRepo, eventsvc.Config{
		DefaultLimit: cfg.Community.Events.DefaultLimit,
		MaxLimit:     cfg.Community.Events.MaxLimit,
	})
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Community.Votes.RatePerMinute,
		cfg.Community.Votes.RatePer10Sec,
	)
	voteService := votesvc.NewService(voteRepo, eventService, rateLimiter, votesvc.Config{
		TrendingWindow: cfg.Community.Votes.TrendingWindow,
		TrendingLimit:  cfg.Community.Votes.TrendingLimit,
	})
	roleService := rolesvc.NewService(roleRequestRepo, userRepo)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaRepo, mediaStorage, cacheRepo, profilesvc.MediaListCacheKey)
	onboardingService := onboardingsvc.NewService(profileService, mediaRepo, profileRepo, cacheRepo)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		ProfileService:    profileService,
		MediaService:      mediaService,
		EventService:      eventService,
		VoteService:       voteService,
		RoleService:       roleService,
		OnboardingService: onboardingService,
		Postgres:          pool,
		Redis:             redisClient,
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func (a *App) Pool() *pgxpool.Pool {
	return a.postgres
}
