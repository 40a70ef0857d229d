package config

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.True(t, cfg.Payroll.StandardMonthlyDays.Equal(decimal.RequireFromString("21.75")))
	assert.True(t, cfg.Payroll.StandardDailyHours.Equal(decimal.NewFromInt(8)))
	assert.True(t, cfg.Payroll.HolidayMultiplier.Equal(decimal.NewFromInt(3)))
	assert.False(t, cfg.Payroll.PriceWorkdayOvertime)
	assert.Equal(t, 7, cfg.Report.DefaultLookbackDays)
	assert.Equal(t, []string{"公出", "外出"}, cfg.Report.BusinessTripMarkers)
	assert.Equal(t, "0 2 * * *", cfg.Cron.DailyReportSpec)
	assert.Equal(t, "", cfg.Redis.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYROLL_STANDARD_MONTHLY_DAYS", "22")
	t.Setenv("PAYROLL_PRICE_WORKDAY_OVERTIME", "true")
	t.Setenv("REPORT_WORKERS", "8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Payroll.StandardMonthlyDays.Equal(decimal.NewFromInt(22)))
	assert.True(t, cfg.Payroll.PriceWorkdayOvertime)
	assert.Equal(t, 8, cfg.Report.Workers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"port", "DB_PORT", "abc"},
		{"decimal", "PAYROLL_STANDARD_DAILY_HOURS", "eight"},
		{"zero days", "PAYROLL_STANDARD_MONTHLY_DAYS", "0"},
		{"workers", "REPORT_WORKERS", "0"},
		{"timezone", "CRON_TIMEZONE", "Mars/Olympus"},
		{"duration", "APP_SHUTDOWN_TIMEOUT", "soon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.App.LogLevel = "DEBUG"
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	cfg.App.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
