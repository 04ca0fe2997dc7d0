package config

import (
	"fmt"
	"time"
)

// Config holds everything the server and the sweep binary need.
type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Identity   IdentityConfig
	Session    SessionConfig
	Onboarding OnboardingConfig
	Storage    StorageConfig
	SMS        SMSConfig
	Payment    PaymentConfig
	Secrets    SecretsConfig
	Crypto     CryptoConfig
	Timeouts   TimeoutConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins string
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN renders the key/value form accepted by the postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type IdentityConfig struct {
	BaseURL string
	APIKey  string
}

type SessionConfig struct {
	AbsoluteMaxAge time.Duration
	IdleMaxAge     time.Duration
	CookieDomain   string
}

type OnboardingConfig struct {
	FinalStep        int
	SweepConcurrency int
}

type StorageConfig struct {
	BaseURL        string
	ServiceKey     string
	Bucket         string
	SignedURLValid time.Duration
}

type SMSConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
	OTPTTL   time.Duration
}

type PaymentConfig struct {
	SecretKey          string
	PublishableKey     string
	WebhookSecret      string
	DefaultAmountPaise int64
	Currency           string
}

type SecretsConfig struct {
	CronSecret string
	HookSecret string
}

type CryptoConfig struct {
	BankAccountKey string
}

type TimeoutConfig struct {
	Upstream time.Duration
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	LoadEnv()

	return &Config{
		App: AppConfig{
			Port:        GetEnv("PORT", "3000"),
			Environment: Environment(),
			LogLevel:    GetEnv("LOG_LEVEL", "info"),
			CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		},
		DB: DBConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "merchantportal"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
			TTL:      GetDurationEnv("REDIS_DEFAULT_TTL", 24*time.Hour),
		},
		Identity: IdentityConfig{
			BaseURL: GetEnv("AUTH_URL", "http://localhost:9999"),
			APIKey:  GetEnv("AUTH_ANON_KEY", ""),
		},
		Session: SessionConfig{
			AbsoluteMaxAge: GetDurationEnv("SESSION_MAX_AGE", 12*time.Hour),
			IdleMaxAge:     GetDurationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute),
			CookieDomain:   GetEnv("COOKIE_DOMAIN", ""),
		},
		Onboarding: OnboardingConfig{
			FinalStep:        GetIntEnv("ONBOARDING_FINAL_STEP", 9),
			SweepConcurrency: GetIntEnv("ONBOARDING_SWEEP_CONCURRENCY", 8),
		},
		Storage: StorageConfig{
			BaseURL:        GetEnv("STORAGE_URL", "http://localhost:5000"),
			ServiceKey:     GetEnv("STORAGE_SERVICE_KEY", ""),
			Bucket:         GetEnv("STORAGE_BUCKET", "merchant-media"),
			SignedURLValid: GetDurationEnv("SIGNED_URL_TTL", 7*24*time.Hour),
		},
		SMS: SMSConfig{
			BaseURL:  GetEnv("SMS_API_URL", ""),
			APIKey:   GetEnv("SMS_API_KEY", ""),
			SenderID: GetEnv("SMS_SENDER_ID", "MRCHNT"),
			OTPTTL:   GetDurationEnv("OTP_TTL", 5*time.Minute),
		},
		Payment: PaymentConfig{
			SecretKey:          GetEnv("STRIPE_SECRET_KEY", ""),
			PublishableKey:     GetEnv("STRIPE_PUBLISHABLE_KEY", ""),
			WebhookSecret:      GetEnv("PAYMENT_WEBHOOK_SECRET", ""),
			DefaultAmountPaise: int64(GetIntEnv("ONBOARDING_FEE_PAISE", 100)),
			Currency:           GetEnv("PAYMENT_CURRENCY", "INR"),
		},
		Secrets: SecretsConfig{
			CronSecret: GetEnv("CRON_SECRET", ""),
			HookSecret: GetEnv("SMS_HOOK_SECRET", ""),
		},
		Crypto: CryptoConfig{
			BankAccountKey: GetEnv("BANK_ENCRYPTION_KEY", ""),
		},
		Timeouts: TimeoutConfig{
			Upstream: GetDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second),
		},
	}
}
