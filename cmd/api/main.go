package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lrliang/hmf-ehr/internal/config"
	"github.com/lrliang/hmf-ehr/internal/domain/calendar"
	"github.com/lrliang/hmf-ehr/internal/domain/leave"
	"github.com/lrliang/hmf-ehr/internal/domain/payroll"
	appHTTP "github.com/lrliang/hmf-ehr/internal/handler/http"
	"github.com/lrliang/hmf-ehr/internal/handler/http/middleware"
	"github.com/lrliang/hmf-ehr/internal/pkg/cron"
	"github.com/lrliang/hmf-ehr/internal/pkg/database"
	"github.com/lrliang/hmf-ehr/internal/pkg/jwt"
	"github.com/lrliang/hmf-ehr/internal/pkg/keylock"
	"github.com/lrliang/hmf-ehr/internal/pkg/sse"
	"github.com/lrliang/hmf-ehr/internal/repository/postgresql"
	payrollService "github.com/lrliang/hmf-ehr/internal/service/payroll"
	reportService "github.com/lrliang/hmf-ehr/internal/service/report"
	"github.com/lrliang/hmf-ehr/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db); err != nil {
			return err
		}
	}

	var locker keylock.Locker = keylock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		client, err := keylock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		locker = keylock.NewRedisLocker(client, 0)
		slog.Info("using redis key locks", "addr", cfg.Redis.Addr)
	}

	policy := calendar.NewDefaultPolicy()
	if cfg.Report.HolidaysFile != "" {
		holidays, err := calendar.LoadHolidayTable(cfg.Report.HolidaysFile)
		if err != nil {
			return err
		}
		policy = calendar.NewTablePolicy(holidays)
		slog.Info("loaded holiday table", "file", cfg.Report.HolidaysFile)
	}

	// Validate already resolved the zone.
	location, _ := time.LoadLocation(cfg.Cron.Timezone)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	punchRepo := postgresql.NewPunchRepository(db)
	dailyRepo := postgresql.NewDailyReportRepository(db)
	monthlyRepo := postgresql.NewMonthlyReportRepository(db)
	salaryRepo := postgresql.NewSalaryDetailRepository(db)

	hub := sse.NewHub()

	calculator := reportService.NewDailyCalculator(policy, leave.NoopSource{}, reportService.CalculatorConfig{
		LunchBreakHours:       cfg.Report.LunchBreakHours,
		OvertimeHoursPerPunch: cfg.Report.OvertimeHoursPerPunch,
		BusinessTripHours:     cfg.Report.BusinessTripHours,
		BusinessTripMarkers:   cfg.Report.BusinessTripMarkers,
		Location:              location,
	})
	aggregator := reportService.NewMonthlyAggregator(dailyRepo, monthlyRepo, policy)
	orchestrator := reportService.NewOrchestrator(
		employeeRepo,
		punchRepo,
		dailyRepo,
		calculator,
		aggregator,
		locker,
		hub,
		cfg.Report.Workers,
	)
	reportSvc := reportService.NewReportService(orchestrator, dailyRepo, monthlyRepo, cfg.Report.DefaultLookbackDays, location)

	payrollSvc := payrollService.NewPayrollService(
		salaryRepo,
		monthlyRepo,
		employeeRepo,
		payrollService.NewCalculator(payrollService.RatesFromConfig(cfg.Payroll)),
		payroll.NoDeductions{},
		locker,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		rateLimiter,
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewEventsHandler(hub, JWTService),
	)

	var scheduler *cron.Scheduler
	if cfg.Cron.Enabled {
		scheduler = cron.NewScheduler(location)
		jobs := cron.NewReportJobs(orchestrator, cfg.Cron.DailyReportSpec, cfg.Cron.DailyJobDeadline, location)
		if err := jobs.RegisterJobs(scheduler); err != nil {
			return err
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
