package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Billing      BillingConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = "file:makeitsell.db?cache=shared"
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MAKEITSELL_APP_ENV" required:"true"`
	Port         string `envconfig:"MAKEITSELL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MAKEITSELL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MAKEITSELL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MAKEITSELL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MAKEITSELL_DB_DSN"`
	Driver string `envconfig:"MAKEITSELL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MAKEITSELL_DB_HOST"`
	LegacyPort     int    `envconfig:"MAKEITSELL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MAKEITSELL_DB_USER"`
	LegacyPassword string `envconfig:"MAKEITSELL_DB_PASSWORD"`
	LegacyName     string `envconfig:"MAKEITSELL_DB_NAME"`
	LegacySSLMode  string `envconfig:"MAKEITSELL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MAKEITSELL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAKEITSELL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MAKEITSELL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MAKEITSELL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MAKEITSELL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MAKEITSELL_REDIS_ADDR"`
	Password     string        `envconfig:"MAKEITSELL_REDIS_PASSWORD"`
	DB           int           `envconfig:"MAKEITSELL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MAKEITSELL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MAKEITSELL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MAKEITSELL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MAKEITSELL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MAKEITSELL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BillingConfig carries the subscription lifecycle windows. The published
// terms of service describe a 7/10/20-day escalation that does not match the
// 5-day grace window billing has always enforced; the windows stay
// configurable until product settles which policy is authoritative.
type BillingConfig struct {
	PeriodDays          int           `envconfig:"MAKEITSELL_BILLING_PERIOD_DAYS" default:"30"`
	GracePeriodDays     int           `envconfig:"MAKEITSELL_GRACE_PERIOD_DAYS" default:"5"`
	GraceReminderEvery  time.Duration `envconfig:"MAKEITSELL_GRACE_REMINDER_INTERVAL" default:"24h"`
	ExpiryWarningLead   time.Duration `envconfig:"MAKEITSELL_EXPIRY_WARNING_LEAD" default:"24h"`
	NotificationTimeout time.Duration `envconfig:"MAKEITSELL_NOTIFICATION_TIMEOUT" default:"10s"`
	SchedulerScanLimit  int           `envconfig:"MAKEITSELL_SCHEDULER_SCAN_LIMIT" default:"500"`
}

// Period returns the billing period as a duration.
func (b BillingConfig) Period() time.Duration {
	days := b.PeriodDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// GracePeriod returns the grace window as a duration.
func (b BillingConfig) GracePeriod() time.Duration {
	days := b.GracePeriodDays
	if days <= 0 {
		days = 5
	}
	return time.Duration(days) * 24 * time.Hour
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MAKEITSELL_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"MAKEITSELL_CRON_LOCK_TTL" default:"25h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MAKEITSELL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MAKEITSELL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
