// Command server runs the voicegate HTTP service: the voice-session
// gate, the admin account surface, and the health and metrics endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	accounthandler "voicegate/internal/account/handler"
	"voicegate/internal/account/models"
	accountservice "voicegate/internal/account/service"
	accountstore "voicegate/internal/account/store"
	accountmemory "voicegate/internal/account/store/memory"
	accountpostgres "voicegate/internal/account/store/postgres"
	accountredis "voicegate/internal/account/store/redis"
	"voicegate/internal/audit"
	auditkafka "voicegate/internal/audit/sink/kafka"
	auditmemory "voicegate/internal/audit/store/memory"
	auditpostgres "voicegate/internal/audit/store/postgres"
	"voicegate/internal/device"
	"voicegate/internal/entitlement"
	"voicegate/internal/gate"
	gatehandler "voicegate/internal/gate/handler"
	gatemetrics "voicegate/internal/gate/metrics"
	httpapi "voicegate/internal/http"
	"voicegate/internal/issuer"
	"voicegate/internal/platform/config"
	"voicegate/internal/platform/database"
	"voicegate/internal/platform/httpserver"
	"voicegate/internal/platform/logger"
	"voicegate/internal/platform/metrics"
	platformotel "voicegate/internal/platform/otel"
	platformredis "voicegate/internal/platform/redis"
	"voicegate/internal/platform/secrets"
	id "voicegate/pkg/domain"
	"voicegate/pkg/platform/sentinel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "voicegate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	stopTracing, err := platformotel.Setup(ctx, "voicegate", cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := stopTracing(flushCtx); err != nil {
			log.Warn("trace provider shutdown failed", "error", err)
		}
	}()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.close()

	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}
	entitlements := entitlement.NewClient(entitlement.Config{
		BaseURL:   cfg.Entitlement.BaseURL,
		APIKey:    cfg.Entitlement.APIKey,
		ProjectID: cfg.Entitlement.ProjectID,
	}, providerClient)

	tokenIssuer, err := buildIssuer(cfg, providerClient, log)
	if err != nil {
		return err
	}

	publisherOpts := []audit.PublisherOption{
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithLogger(log),
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka audit sink: %w", err)
		}
		publisherOpts = append(publisherOpts, audit.WithSink(sink))
		stores.ready["kafka"] = sink
	}
	// The publisher owns the sink: Close drains the worker, then closes it.
	publisher := audit.NewPublisher(stores.audits, publisherOpts...)
	defer publisher.Close()

	gateService, err := gate.New(
		stores.accounts,
		entitlements,
		tokenIssuer,
		gate.Config{
			DefaultTrialLimit:  cfg.DefaultTrialLimit,
			EnforceEntitlement: cfg.EnforceEntitlement,
		},
		gate.WithLogger(log),
		gate.WithAuditPublisher(publisher),
		gate.WithMetrics(gatemetrics.New()),
	)
	if err != nil {
		return err
	}

	adminService, err := accountservice.New(
		stores.accounts,
		stores.audits,
		accountservice.Config{DefaultTrialLimit: cfg.DefaultTrialLimit},
		accountservice.WithLogger(log),
		accountservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	if len(cfg.SeedAccounts) > 0 {
		seedAccounts(ctx, stores.accounts, cfg.SeedAccounts, log)
	}

	router := httpapi.New(httpapi.Deps{
		Logger:             log,
		Metrics:            metrics.New(),
		Gate:               gatehandler.New(gateService, log),
		Admin:              accounthandler.New(adminService, log),
		Device:             device.NewService(cfg.DeviceFingerprint),
		InternalAuthSecret: cfg.InternalAuthSecret,
		AdminToken:         cfg.AdminToken,
		AdminTokenHash:     cfg.AdminTokenHash,
		ReadyChecks:        stores.ready,
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("voicegate listening",
			"addr", cfg.Addr,
			"store_backend", cfg.StoreBackend,
			"enforce_entitlement", cfg.EnforceEntitlement,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return <-errCh
}

// backends bundles the storage layer picked by VOICEGATE_STORE_BACKEND.
// The redis backend keeps the audit trail in memory; pair it with a
// Kafka sink when the trail must survive restarts.
type backends struct {
	accounts accountstore.Store
	audits   audit.Store
	ready    map[string]httpapi.HealthChecker
	close    func()
}

func openStores(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{
		ready: make(map[string]httpapi.HealthChecker),
		close: func() {},
	}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		b.accounts = accountpostgres.New(db)
		b.audits = auditpostgres.New(db)
		b.close = func() { _ = db.Close() }

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.accounts = accountredis.New(client)
		b.audits = auditmemory.New()
		b.close = func() { _ = client.Close() }

	default:
		b.accounts = accountmemory.New()
		b.audits = auditmemory.New()
	}

	b.ready["account_store"] = b.accounts
	return b, nil
}

// buildIssuer selects the token issuer. Local mode mints JWTs in
// process and is meant for development; remote mode calls the voice
// platform's token endpoint.
func buildIssuer(cfg config.Config, httpClient *http.Client, log *slog.Logger) (gate.TokenIssuer, error) {
	if cfg.Issuer.Mode == config.IssuerLocal {
		key := cfg.Issuer.SigningKey
		if key == "" {
			generated, err := secrets.Generate()
			if err != nil {
				return nil, fmt.Errorf("generate signing key: %w", err)
			}
			key = generated
			log.Warn("issuer signing key generated at startup, tokens will not survive a restart")
		}
		return issuer.NewJWTIssuer(key, cfg.Issuer.TokenTTL), nil
	}

	return issuer.NewClient(issuer.Config{
		BaseURL: cfg.Issuer.BaseURL,
		APIKey:  cfg.Issuer.APIKey,
	}, httpClient), nil
}

// seedAccounts pre-creates accounts from "user-id" or "user-id:count"
// entries. Existing accounts are left untouched.
func seedAccounts(ctx context.Context, store accountstore.Store, entries []string, log *slog.Logger) {
	for _, entry := range entries {
		userRaw, countRaw, hasCount := strings.Cut(entry, ":")

		userID, err := id.ParseUserID(strings.TrimSpace(userRaw))
		if err != nil {
			log.Warn("skipping malformed seed account", "entry", entry, "error", err)
			continue
		}

		count := 0
		if hasCount {
			count, err = strconv.Atoi(strings.TrimSpace(countRaw))
			if err != nil || count < 0 {
				log.Warn("skipping malformed seed account", "entry", entry)
				continue
			}
		}

		account, err := models.NewAccount(userID, time.Now())
		if err != nil {
			log.Warn("skipping seed account", "entry", entry, "error", err)
			continue
		}
		account.VoiceConversationCount = count

		if err := store.Create(ctx, account); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			log.Warn("seeding account failed", "user_id", userID, "error", err)
			continue
		}
		log.Info("seeded account", "user_id", userID, "voice_conversation_count", count)
	}
}
