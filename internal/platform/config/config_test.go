package config

import (
	"testing"
	"time"

	dErrors "voicegate/pkg/domain-errors"
)

func validConfig() Config {
	return Config{
		Addr:              ":8080",
		StoreBackend:      StoreMemory,
		DefaultTrialLimit: 3,
		Issuer: IssuerConfig{
			Mode:     IssuerLocal,
			TokenTTL: 15 * time.Minute,
		},
		AuditBuffer:     1024,
		ProviderTimeout: 10 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid local issuer", mutate: func(c *Config) {}},
		{
			name: "valid remote issuer",
			mutate: func(c *Config) {
				c.Issuer = IssuerConfig{Mode: IssuerRemote, BaseURL: "https://issuer.example.com", APIKey: "key"}
			},
		},
		{
			name:    "negative trial limit",
			mutate:  func(c *Config) { c.DefaultTrialLimit = -1 },
			wantErr: true,
		},
		{
			name:    "unknown store backend",
			mutate:  func(c *Config) { c.StoreBackend = "etcd" },
			wantErr: true,
		},
		{
			name:    "postgres without database url",
			mutate:  func(c *Config) { c.StoreBackend = StorePostgres },
			wantErr: true,
		},
		{
			name: "postgres with database url",
			mutate: func(c *Config) {
				c.StoreBackend = StorePostgres
				c.DatabaseURL = "postgres://localhost/voicegate"
			},
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.StoreBackend = StoreRedis },
			wantErr: true,
		},
		{
			name: "remote issuer without api key",
			mutate: func(c *Config) {
				c.Issuer = IssuerConfig{Mode: IssuerRemote, BaseURL: "https://issuer.example.com"}
			},
			wantErr: true,
		},
		{
			name: "remote issuer without base url",
			mutate: func(c *Config) {
				c.Issuer = IssuerConfig{Mode: IssuerRemote, APIKey: "key"}
			},
			wantErr: true,
		},
		{
			name:    "unknown issuer mode",
			mutate:  func(c *Config) { c.Issuer.Mode = "vault" },
			wantErr: true,
		},
		{
			name:    "enforcement without provider credentials",
			mutate:  func(c *Config) { c.EnforceEntitlement = true },
			wantErr: true,
		},
		{
			name: "enforcement with partial provider credentials",
			mutate: func(c *Config) {
				c.EnforceEntitlement = true
				c.Entitlement = EntitlementConfig{BaseURL: "https://api.example.com", APIKey: "key"}
			},
			wantErr: true,
		},
		{
			name: "enforcement fully configured",
			mutate: func(c *Config) {
				c.EnforceEntitlement = true
				c.Entitlement = EntitlementConfig{BaseURL: "https://api.example.com", APIKey: "key", ProjectID: "proj"}
			},
		},
		{
			name:    "zero audit buffer",
			mutate:  func(c *Config) { c.AuditBuffer = 0 },
			wantErr: true,
		},
		{
			name:    "zero provider timeout",
			mutate:  func(c *Config) { c.ProviderTimeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !dErrors.HasCode(err, dErrors.CodeValidation) {
					t.Errorf("expected validation code, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	// Remote is the default issuer mode and fails validation without
	// credentials, so pin local mode for the defaults check.
	t.Setenv("VOICEGATE_ISSUER_MODE", "local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.DefaultTrialLimit != 3 {
		t.Errorf("DefaultTrialLimit = %d, want 3", cfg.DefaultTrialLimit)
	}
	if cfg.EnforceEntitlement {
		t.Error("EnforceEntitlement should default to false")
	}
	if cfg.Issuer.TokenTTL != 15*time.Minute {
		t.Errorf("TokenTTL = %v, want 15m", cfg.Issuer.TokenTTL)
	}
	if cfg.AuditTopic != "voicegate.audit" {
		t.Errorf("AuditTopic = %q, want voicegate.audit", cfg.AuditTopic)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Errorf("ProviderTimeout = %v, want 10s", cfg.ProviderTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VOICEGATE_ADDR", ":9090")
	t.Setenv("VOICEGATE_DEFAULT_TRIAL_LIMIT", "5")
	t.Setenv("VOICEGATE_ENFORCE_ENTITLEMENT", "true")
	t.Setenv("VOICEGATE_ENTITLEMENT_BASE_URL", "https://api.example.com")
	t.Setenv("VOICEGATE_ENTITLEMENT_API_KEY", "secret")
	t.Setenv("VOICEGATE_ENTITLEMENT_PROJECT_ID", "proj_1")
	t.Setenv("VOICEGATE_ISSUER_MODE", "local")
	t.Setenv("VOICEGATE_KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.DefaultTrialLimit != 5 {
		t.Errorf("DefaultTrialLimit = %d, want 5", cfg.DefaultTrialLimit)
	}
	if !cfg.EnforceEntitlement {
		t.Error("EnforceEntitlement should be true")
	}
	if cfg.Entitlement.ProjectID != "proj_1" {
		t.Errorf("ProjectID = %q, want proj_1", cfg.Entitlement.ProjectID)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Errorf("KafkaBrokers = %v, want two brokers", cfg.KafkaBrokers)
	}
}

func TestLoadNormalizesLists(t *testing.T) {
	t.Setenv("VOICEGATE_ISSUER_MODE", "local")
	t.Setenv("VOICEGATE_KAFKA_BROKERS", " broker-1:9092 ,broker-2:9092,broker-1:9092, ")
	t.Setenv("VOICEGATE_SEED_ACCOUNTS", "3f1d8a9e-0000-0000-0000-000000000001:2, 3f1d8a9e-0000-0000-0000-000000000001:2 ,3f1d8a9e-0000-0000-0000-000000000002")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantBrokers := []string{"broker-1:9092", "broker-2:9092"}
	if len(cfg.KafkaBrokers) != len(wantBrokers) {
		t.Fatalf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, wantBrokers)
	}
	for i, b := range wantBrokers {
		if cfg.KafkaBrokers[i] != b {
			t.Errorf("KafkaBrokers[%d] = %q, want %q", i, cfg.KafkaBrokers[i], b)
		}
	}
	if len(cfg.SeedAccounts) != 2 {
		t.Fatalf("SeedAccounts = %v, want two entries", cfg.SeedAccounts)
	}
	if cfg.SeedAccounts[0] != "3f1d8a9e-0000-0000-0000-000000000001:2" {
		t.Errorf("SeedAccounts[0] = %q, want trimmed entry", cfg.SeedAccounts[0])
	}
}
