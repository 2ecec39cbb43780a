package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/auth"
	"salesboard/internal/domain/dashboard"
	"salesboard/internal/domain/engagement"
	domainmetrics "salesboard/internal/domain/metrics"
	"salesboard/internal/domain/roster"
	"salesboard/internal/domain/statistics"
	"salesboard/internal/platform/archive"
	"salesboard/internal/platform/config"
	"salesboard/internal/platform/crypto"
	"salesboard/internal/platform/email"
	"salesboard/internal/platform/jobs"
	"salesboard/internal/platform/logger"
	"salesboard/internal/platform/metrics"
	"salesboard/internal/storage"
	"salesboard/internal/transport/http/api"
	authhandler "salesboard/internal/transport/http/handlers/auth"
	dashboardhandler "salesboard/internal/transport/http/handlers/dashboard"
	engagementhandler "salesboard/internal/transport/http/handlers/engagement"
	metricshandler "salesboard/internal/transport/http/handlers/metrics"
	rosterhandler "salesboard/internal/transport/http/handlers/roster"
	statisticshandler "salesboard/internal/transport/http/handlers/statistics"
	systemhandler "salesboard/internal/transport/http/handlers/system"
	"salesboard/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Store   storage.Store
	Roster  *roster.Roster
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler

	cancelJobs context.CancelFunc
}

// New wires the store, services, jobs and router for cfg. The caller owns the
// returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	loc := cfg.Location()

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}
	team, err := loadRoster(cfg.RosterPath, sealer)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	expect := engagement.FixedExpectation
	if cfg.ExpectedRatings == config.ExpectedRoster {
		expect = engagement.RosterExpectation(team.Employees())
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set; using an ephemeral secret, sessions end on restart")
	}

	collector := metrics.New()
	engagementSvc := engagement.NewService(store, team, expect)
	metricsSvc := domainmetrics.NewService(store)
	statisticsSvc := statistics.NewService(engagementSvc, metricsSvc, statistics.Options{
		HistoryWeeks:  cfg.HistoryWeeks,
		HistoryMonths: cfg.HistoryMonths,
		Location:      loc,
		PDFFontPath:   cfg.PDFFontPath,
	})
	dashboardSvc := dashboard.NewService(engagementSvc, metricsSvc, loc)
	authSvc := auth.NewService(team, auth.Options{
		Secret:            secret,
		TTL:               cfg.SessionTTL,
		AllowPasswordless: !cfg.IsProduction(),
	})

	reportArchive, err := openArchive(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	mailer := email.New(email.Options{
		Enabled:  cfg.EmailEnabled,
		From:     cfg.EmailFrom,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		UseTLS:   cfg.SMTPUseTLS,
	})
	weeklyReport := jobs.WeeklyReport{
		Engagement: engagementSvc,
		Statistics: statisticsSvc,
		Archive:    reportArchive,
		Mailer:     mailer,
		Metrics:    collector,
		Location:   loc,
	}

	jobSvc := jobs.New(loc)
	if cfg.ReportSchedule != "" {
		if err := jobSvc.Schedule(cfg.ReportSchedule, jobs.JobWeeklyReport, weeklyReport.Run); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	jobSvc.Start(jobCtx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(authSvc))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("readiness check failed")
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	var resetFunc systemhandler.ResetFunc
	if !cfg.IsProduction() {
		resetFunc = store.Reset
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, collector).RegisterRoutes(r)
		rosterhandler.NewHandler(team).RegisterRoutes(r)
		engagementhandler.NewHandler(engagementSvc, statisticsSvc, collector, loc).RegisterRoutes(r)
		metricshandler.NewHandler(metricsSvc, collector).RegisterRoutes(r)
		dashboardhandler.NewHandler(dashboardSvc).RegisterRoutes(r)
		statisticshandler.NewHandler(statisticsSvc, collector).RegisterRoutes(r)
		systemhandler.NewHandler(collector, jobSvc, weeklyReport.Run, resetFunc).RegisterRoutes(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	log.Info().
		Str("store", cfg.StoreDriver).
		Int("employees", team.Len()).
		Str("expectedRatings", cfg.ExpectedRatings).
		Msg("application initialised")

	return &App{
		Config:     cfg,
		Store:      store,
		Roster:     team,
		Jobs:       jobSvc,
		Metrics:    collector,
		Router:     router,
		cancelJobs: cancelJobs,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.Config.Addr).Msg("salesboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() error {
	if a.cancelJobs != nil {
		a.cancelJobs()
	}
	if a.Jobs != nil {
		a.Jobs.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// loadRoster reads the roster file, or the built-in roster when path is empty,
// and opens any sealed TOTP secrets.
func loadRoster(path string, sealer *crypto.Service) (*roster.Roster, error) {
	team, err := roster.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	employees := team.Employees()
	sealed := false
	for i, emp := range employees {
		if emp.TOTPSecret == "" {
			continue
		}
		secret, err := sealer.Open(emp.TOTPSecret)
		if err != nil {
			return nil, fmt.Errorf("roster employee %d totp secret: %w", emp.ID, err)
		}
		sealed = sealed || secret != emp.TOTPSecret
		employees[i].TOTPSecret = secret
	}
	if !sealed {
		return team, nil
	}
	return roster.New(employees)
}

func openArchive(cfg config.Config) (archive.Archive, error) {
	if cfg.S3Bucket != "" {
		return archive.NewS3(archive.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return archive.NewLocal(cfg.ReportDir)
}
