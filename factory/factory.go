package factory

import (
	"fmt"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/middleware"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	"github.com/Jidetireni/firstcare-registration/internal/services/admin"
	"github.com/Jidetireni/firstcare-registration/internal/services/agents"
	"github.com/Jidetireni/firstcare-registration/internal/services/membership"
	"github.com/Jidetireni/firstcare-registration/internal/services/registration"
	"github.com/Jidetireni/firstcare-registration/internal/services/sessions"
	"github.com/Jidetireni/firstcare-registration/internal/validation"
	"github.com/Jidetireni/firstcare-registration/pkg/cache"
	database "github.com/Jidetireni/firstcare-registration/pkg/database"
	emailpkg "github.com/Jidetireni/firstcare-registration/pkg/email"
	"github.com/Jidetireni/firstcare-registration/pkg/firstcare"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/Jidetireni/firstcare-registration/pkg/metrics"
	"github.com/Jidetireni/firstcare-registration/pkg/token"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

type Repositories struct {
	Session    sessions.SessionRepository
	Submission *repository.SubmissionRepository
	Payment    *repository.PaymentRepository
}

type Services struct {
	Session      *sessions.Session
	Registration *registration.Registration
	Agent        *agents.Agents
	Membership   *membership.Membership
	Admin        *admin.Admin
}

type Factory struct {
	DB           *database.PostgresDB
	Cache        *cache.Redis
	JWTToken     *token.Jwt
	Email        *emailpkg.Email
	Backend      *firstcare.Client
	Metrics      *metrics.Metrics
	Validator    *validation.Validator
	Logger       *logger.Logger
	Router       *chi.Mux
	Services     *Services
	Repositories *Repositories
	Middleware   *middleware.Middleware
}

func New(cfg *config.Config) (*Factory, func(), error) {
	log := logger.New(cfg)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	db, dbCleanup, err := database.New(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, dbCleanup)

	// Sessions live in Redis when it is configured; a single instance can
	// keep them in memory.
	var (
		redis       *cache.Redis
		sessionRepo sessions.SessionRepository
	)
	if cfg.Redis.URL != "" {
		var redisCleanup func()
		redis, redisCleanup, err = cache.New(cfg.Redis.URL, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, redisCleanup)
		sessionRepo = repository.NewRedisSessionRepository(redis)
	} else {
		log.Warn().Msg("REDIS_URL not set, keeping wizard sessions in memory")
		sessionRepo = repository.NewMemorySessionRepository()
	}

	validator, err := validation.New()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build validator: %w", err)
	}

	email, err := emailpkg.New(cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	jwtToken := token.NewJwt(cfg.Auth.JWTSecret)
	backend := firstcare.New(cfg)
	m := metrics.New(prometheus.DefaultRegisterer)

	submissionRepo := repository.NewSubmissionRepository(db.DB)
	paymentRepo := repository.NewPaymentRepository(db.DB)

	sessionService := sessions.New(
		cfg,
		sessionRepo,
		jwtToken,
		validator,
		m,
		log,
	)

	registrationService := registration.New(
		sessionService,
		backend,
		submissionRepo,
		email,
		validator,
		m,
		log,
	)

	agentService, err := agents.New(sessionService, backend, m, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	membershipService := membership.New(
		sessionService,
		backend,
		paymentRepo,
		email,
		validator,
		m,
		log,
	)

	adminService := admin.New(submissionRepo, paymentRepo, backend, log)

	middleware := middleware.New(cfg, sessionService, log)

	return &Factory{
		DB:        db,
		Cache:     redis,
		JWTToken:  jwtToken,
		Email:     email,
		Backend:   backend,
		Metrics:   m,
		Validator: validator,
		Logger:    log,
		Router:    chi.NewRouter(),
		Services: &Services{
			Session:      sessionService,
			Registration: registrationService,
			Agent:        agentService,
			Membership:   membershipService,
			Admin:        adminService,
		},
		Repositories: &Repositories{
			Session:    sessionRepo,
			Submission: submissionRepo,
			Payment:    paymentRepo,
		},
		Middleware: middleware,
	}, cleanup, nil
}
