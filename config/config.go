// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	Port           string `env:"PORT" envDefault:"5200"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// Stripe
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	MembershipFeeCents  int64  `env:"MEMBERSHIP_FEE_CENTS" envDefault:"700"`
	MembershipCurrency  string `env:"MEMBERSHIP_CURRENCY" envDefault:"nzd"`

	// Resend (referral code email)
	ResendAPIKey    string `env:"RESEND_API_KEY"`
	ResendFromEmail string `env:"RESEND_FROM_EMAIL" envDefault:"TANSA <onboarding@resend.dev>"`
	SiteURL         string `env:"SITE_URL" envDefault:"https://tansa.co.nz"`
	NotifyQueueSize int    `env:"NOTIFY_QUEUE_SIZE" envDefault:"64"`

	// Exec dashboard
	ExecDashboardPassword string `env:"EXEC_DASHBOARD_PASSWORD"`
	ExecDashboardSecret   string `env:"EXEC_DASHBOARD_SECRET"`

	// Background jobs
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"10m"`
	ReconcileLookback time.Duration `env:"RECONCILE_LOOKBACK" envDefault:"24h"`
	ExportInterval    time.Duration `env:"EXPORT_INTERVAL" envDefault:"24h"`

	// Cloudflare R2
	CloudflareAccountID string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `env:"R2_ACCESS_KEY_SECRET"`
	R2BucketName        string `env:"R2_BUCKET_NAME"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MembershipFeeCents <= 0 {
		return nil, errors.New("MEMBERSHIP_FEE_CENTS must be positive")
	}
	return &cfg, nil
}

// RequireDatabase fails when no DSN is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	return nil
}

// OriginList splits ALLOWED_ORIGINS and trims each entry.
func (c *Config) OriginList() []string {
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// R2Enabled reports whether export uploads can run.
func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2AccessKeyID != "" &&
		c.R2AccessKeySecret != "" && c.R2BucketName != ""
}

// SessionSecret is the exec dashboard token signing key. It falls back to the
// dashboard password so a single secret is enough in small deployments.
func (c *Config) SessionSecret() string {
	if c.ExecDashboardSecret != "" {
		return c.ExecDashboardSecret
	}
	return c.ExecDashboardPassword
}
