// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	dErrors "voicegate/pkg/domain-errors"
	pstrings "voicegate/pkg/platform/strings"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Issuer modes.
const (
	IssuerRemote = "remote"
	IssuerLocal  = "local"
)

// Config is the full service configuration. All knobs come from
// VOICEGATE_-prefixed environment variables.
type Config struct {
	Addr      string `env:"VOICEGATE_ADDR" envDefault:":8080"`
	LogLevel  string `env:"VOICEGATE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"VOICEGATE_LOG_FORMAT" envDefault:"json"`

	StoreBackend string `env:"VOICEGATE_STORE_BACKEND" envDefault:"memory"`
	DatabaseURL  string `env:"VOICEGATE_DATABASE_URL"`

	Redis RedisConfig `envPrefix:"VOICEGATE_REDIS_"`

	DefaultTrialLimit  int  `env:"VOICEGATE_DEFAULT_TRIAL_LIMIT" envDefault:"3"`
	EnforceEntitlement bool `env:"VOICEGATE_ENFORCE_ENTITLEMENT" envDefault:"false"`

	Entitlement EntitlementConfig `envPrefix:"VOICEGATE_ENTITLEMENT_"`
	Issuer      IssuerConfig      `envPrefix:"VOICEGATE_ISSUER_"`

	// AdminToken is compared in constant time; AdminTokenHash is a bcrypt
	// hash and takes precedence when both are set. Empty disables the
	// admin surface.
	AdminToken     string `env:"VOICEGATE_ADMIN_TOKEN"`
	AdminTokenHash string `env:"VOICEGATE_ADMIN_TOKEN_HASH"`

	// InternalAuthSecret, when set, must match the X-Internal-Auth header
	// on every request. It guards deployments where the service is not
	// fronted by the hosting platform's authentication layer.
	InternalAuthSecret string `env:"VOICEGATE_INTERNAL_AUTH_SECRET"`

	// DeviceFingerprint enables hashing client user agents into stable
	// device fingerprints on audit events.
	DeviceFingerprint bool `env:"VOICEGATE_DEVICE_FINGERPRINT" envDefault:"true"`

	// OTELEndpoint enables OTLP trace export. Empty leaves tracing off.
	OTELEndpoint string `env:"VOICEGATE_OTEL_ENDPOINT"`

	KafkaBrokers []string `env:"VOICEGATE_KAFKA_BROKERS"`
	AuditTopic   string   `env:"VOICEGATE_AUDIT_TOPIC" envDefault:"voicegate.audit"`
	AuditBuffer  int      `env:"VOICEGATE_AUDIT_BUFFER" envDefault:"1024"`

	// ProviderTimeout bounds each outbound call to the entitlement
	// provider and the remote issuer.
	ProviderTimeout time.Duration `env:"VOICEGATE_PROVIDER_TIMEOUT" envDefault:"10s"`

	// SeedAccounts pre-creates accounts at startup, "user-id" or
	// "user-id:count" per entry. Memory backend convenience for local runs.
	SeedAccounts []string `env:"VOICEGATE_SEED_ACCOUNTS"`
}

// RedisConfig configures the redis account store backend.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// EntitlementConfig points at the subscription entitlement provider.
type EntitlementConfig struct {
	BaseURL   string `env:"BASE_URL"`
	APIKey    string `env:"API_KEY"`
	ProjectID string `env:"PROJECT_ID"`
}

// IssuerConfig selects and configures the voice token issuer.
type IssuerConfig struct {
	Mode    string `env:"MODE" envDefault:"remote"`
	BaseURL string `env:"BASE_URL"`
	APIKey  string `env:"API_KEY"`

	// SigningKey and TokenTTL apply to the local issuer only. An empty
	// signing key is generated at startup, which invalidates tokens
	// across restarts.
	SigningKey string        `env:"SIGNING_KEY"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeValidation, "parse environment")
	}
	cfg.KafkaBrokers = pstrings.DedupeAndTrim(cfg.KafkaBrokers)
	cfg.SeedAccounts = pstrings.DedupeAndTrim(cfg.SeedAccounts)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot serve traffic. Misconfigured
// providers are hard errors here; the gate still checks provider
// configuration per request so direct construction stays testable.
func (c Config) Validate() error {
	if c.DefaultTrialLimit < 0 {
		return dErrors.New(dErrors.CodeValidation, "default trial limit cannot be negative")
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return dErrors.New(dErrors.CodeValidation, "postgres store backend requires VOICEGATE_DATABASE_URL")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "redis store backend requires VOICEGATE_REDIS_URL")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown store backend %q", c.StoreBackend))
	}

	switch c.Issuer.Mode {
	case IssuerRemote:
		if c.Issuer.BaseURL == "" {
			return dErrors.New(dErrors.CodeValidation, "remote issuer requires VOICEGATE_ISSUER_BASE_URL")
		}
		if c.Issuer.APIKey == "" {
			return dErrors.New(dErrors.CodeValidation, "remote issuer requires VOICEGATE_ISSUER_API_KEY")
		}
	case IssuerLocal:
		if c.Issuer.TokenTTL <= 0 {
			return dErrors.New(dErrors.CodeValidation, "local issuer requires a positive VOICEGATE_ISSUER_TOKEN_TTL")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown issuer mode %q", c.Issuer.Mode))
	}

	if c.EnforceEntitlement {
		if c.Entitlement.BaseURL == "" {
			return dErrors.New(dErrors.CodeValidation, "entitlement enforcement requires VOICEGATE_ENTITLEMENT_BASE_URL")
		}
		if c.Entitlement.APIKey == "" || c.Entitlement.ProjectID == "" {
			return dErrors.New(dErrors.CodeValidation, "entitlement enforcement requires VOICEGATE_ENTITLEMENT_API_KEY and VOICEGATE_ENTITLEMENT_PROJECT_ID")
		}
	}

	if c.AuditBuffer <= 0 {
		return dErrors.New(dErrors.CodeValidation, "audit buffer must be positive")
	}
	if c.ProviderTimeout <= 0 {
		return dErrors.New(dErrors.CodeValidation, "provider timeout must be positive")
	}

	return nil
}
