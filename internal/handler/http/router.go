package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lrliang/hmf-ehr/internal/domain/auth"
	"github.com/lrliang/hmf-ehr/internal/handler/http/middleware"
	"github.com/lrliang/hmf-ehr/internal/pkg/jwt"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	rateLimiter *middleware.RateLimiter,
	reportHandler ReportHandler,
	payrollHandler PayrollHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       opts.LogLevel,
	})).With(
		slog.String("app", "hmf-ehr"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {

		// EventSource carries its own short-lived token.
		r.Get("/reports/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/events/token", eventsHandler.GetSSEToken)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionReportsCalculate))
					r.Use(rateLimiter.Handler)
					r.Post("/daily/calculate", reportHandler.TriggerDailyCalculation)
					r.Post("/daily/calculate-date", reportHandler.TriggerDateCalculation)
					r.Post("/monthly/calculate", reportHandler.TriggerMonthlyCalculation)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionReportsView))
					r.Get("/daily", reportHandler.ListDailyReports)
					r.Get("/daily/{id}", reportHandler.GetDailyReport)
					r.Get("/monthly", reportHandler.ListMonthlyReports)
					r.Get("/monthly/stats", reportHandler.GetMonthlyStats)
					r.Get("/monthly/{id}", reportHandler.GetMonthlyReport)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionReportsConfirm))
					r.Post("/monthly/batch-confirm", reportHandler.BatchConfirmMonthlyReports)
					r.Post("/monthly/{id}/confirm", reportHandler.ConfirmMonthlyReport)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionPayrollCalculate))
					r.Use(rateLimiter.Handler)
					r.Post("/calculate", payrollHandler.CalculateSalary)
					r.Post("/batch-calculate", payrollHandler.BatchCalculateSalary)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionPayrollView))
					r.Get("/salary-details", payrollHandler.ListSalaryDetails)
					r.Get("/salary-details/{id}", payrollHandler.GetSalaryDetail)
					r.Get("/statistics", payrollHandler.GetStatistics)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionPayrollConfirm))
					r.Post("/salary-details/{id}/confirm", payrollHandler.ConfirmSalaryDetail)
					r.Post("/salary-details/{id}/cancel", payrollHandler.CancelSalaryDetail)
				})

				r.With(middleware.RequirePermission(auth.PermissionPayrollPay)).
					Post("/salary-details/{id}/pay", payrollHandler.PaySalaryDetail)
			})
		})
	})
	return r
}
