package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // CRON_TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	App       AppConfig
	Payroll   PayrollConfig
	Report    ReportConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32

	// AutoMigrate applies the embedded schema on startup.
	AutoMigrate bool
}

// RedisConfig is optional. An empty Addr keeps key locks in-process.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int
	Env             string
	LogLevel        string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// PayrollConfig holds the wage-rate constants used by the payroll calculator.
type PayrollConfig struct {
	StandardMonthlyDays  decimal.Decimal
	StandardDailyHours   decimal.Decimal
	WorkdayMultiplier    decimal.Decimal
	RestDayMultiplier    decimal.Decimal
	HolidayMultiplier    decimal.Decimal
	PriceWorkdayOvertime bool
}

type ReportConfig struct {
	DefaultLookbackDays   int
	LunchBreakHours       decimal.Decimal
	OvertimeHoursPerPunch decimal.Decimal
	BusinessTripHours     decimal.Decimal
	BusinessTripMarkers   []string
	HolidaysFile          string
	Workers               int
}

type CronConfig struct {
	Enabled          bool
	DailyReportSpec  string
	Timezone         string
	DailyJobDeadline time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hmf_ehr"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(maxConns),
		MinConns:    int32(minConns),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Username: getEnv("REDIS_USER", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_SHUTDOWN_TIMEOUT: %w", err)
	}

	config.App = AppConfig{
		Port:            appPort,
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		ShutdownTimeout: shutdownTimeout,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll configuration
	payrollCfg := PayrollConfig{}
	decimals := []struct {
		key      string
		fallback string
		dst      *decimal.Decimal
	}{
		{"PAYROLL_STANDARD_MONTHLY_DAYS", "21.75", &payrollCfg.StandardMonthlyDays},
		{"PAYROLL_STANDARD_DAILY_HOURS", "8", &payrollCfg.StandardDailyHours},
		{"PAYROLL_WORKDAY_OVERTIME_MULTIPLIER", "1.5", &payrollCfg.WorkdayMultiplier},
		{"PAYROLL_REST_DAY_OVERTIME_MULTIPLIER", "2.0", &payrollCfg.RestDayMultiplier},
		{"PAYROLL_HOLIDAY_OVERTIME_MULTIPLIER", "3.0", &payrollCfg.HolidayMultiplier},
	}
	for _, d := range decimals {
		v, err := decimal.NewFromString(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}
	payrollCfg.PriceWorkdayOvertime = getEnvBool("PAYROLL_PRICE_WORKDAY_OVERTIME", false)
	config.Payroll = payrollCfg

	// Report configuration
	lookback, err := strconv.Atoi(getEnv("REPORT_DEFAULT_LOOKBACK_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_DEFAULT_LOOKBACK_DAYS: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("REPORT_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_WORKERS: %w", err)
	}
	lunch, err := decimal.NewFromString(getEnv("REPORT_LUNCH_BREAK_HOURS", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_LUNCH_BREAK_HOURS: %w", err)
	}
	overtimePerPunch, err := decimal.NewFromString(getEnv("REPORT_OVERTIME_HOURS_PER_PUNCH", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_OVERTIME_HOURS_PER_PUNCH: %w", err)
	}
	tripHours, err := decimal.NewFromString(getEnv("REPORT_BUSINESS_TRIP_HOURS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_BUSINESS_TRIP_HOURS: %w", err)
	}

	config.Report = ReportConfig{
		DefaultLookbackDays:   lookback,
		LunchBreakHours:       lunch,
		OvertimeHoursPerPunch: overtimePerPunch,
		BusinessTripHours:     tripHours,
		BusinessTripMarkers:   getEnvSlice("REPORT_BUSINESS_TRIP_MARKERS", "公出,外出"),
		HolidaysFile:          getEnv("REPORT_HOLIDAYS_FILE", ""),
		Workers:               workers,
	}

	// Cron configuration
	deadline, err := time.ParseDuration(getEnv("CRON_DAILY_JOB_DEADLINE", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_DAILY_JOB_DEADLINE: %w", err)
	}

	config.Cron = CronConfig{
		Enabled:          getEnvBool("CRON_ENABLED", true),
		DailyReportSpec:  getEnv("CRON_DAILY_REPORT_SPEC", "0 2 * * *"),
		Timezone:         getEnv("CRON_TIMEZONE", "Asia/Shanghai"),
		DailyJobDeadline: deadline,
	}

	// Rate limit configuration
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	config.RateLimit = RateLimitConfig{
		RequestsPerSecond: rps,
		Burst:             burst,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if !c.Payroll.StandardMonthlyDays.IsPositive() {
		return fmt.Errorf("PAYROLL_STANDARD_MONTHLY_DAYS must be positive")
	}
	if !c.Payroll.StandardDailyHours.IsPositive() {
		return fmt.Errorf("PAYROLL_STANDARD_DAILY_HOURS must be positive")
	}
	if c.Report.DefaultLookbackDays < 0 {
		return fmt.Errorf("REPORT_DEFAULT_LOOKBACK_DAYS cannot be negative")
	}
	if c.Report.Workers < 1 {
		return fmt.Errorf("REPORT_WORKERS must be at least 1")
	}
	if _, err := time.LoadLocation(c.Cron.Timezone); err != nil {
		return fmt.Errorf("invalid CRON_TIMEZONE: %w", err)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
