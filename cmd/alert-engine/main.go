// cmd/alert-engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bloodcare-alerts/internal/alerts"
	"bloodcare-alerts/internal/api"
	"bloodcare-alerts/internal/common/config"
	"bloodcare-alerts/internal/common/database"
	httpclient "bloodcare-alerts/internal/common/http"
	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/common/observability"
	"bloodcare-alerts/internal/compose"
	"bloodcare-alerts/internal/dispatch"
	"bloodcare-alerts/internal/ledger"
	"bloodcare-alerts/internal/providers"
	"bloodcare-alerts/internal/recipients"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting alert engine...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("alert-engine")
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional archive sink) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Wire domain components ---
	httpClient := httpclient.NewClient(30 * time.Second)
	defer httpClient.CloseIdleConnections()

	registry := providers.NewRegistry(log)
	registerSMSProviders(registry, cfg, httpClient, log, zapLog)
	registerEmailProviders(registry, cfg, httpClient, log, zapLog)

	alertStore := alerts.NewPostgresStore(pg.DB)
	alertSvc := alerts.NewService(alertStore, log)

	source := recipients.NewPostgresSource(pg.DB)
	resolver := recipients.NewResolver(source, log)

	attemptLedger := ledger.NewRedisLedger(redis.Client)
	archiver := ledger.NewArchiver(esClient, cfg.Database.Elasticsearch.Index, log)
	keyed := ledger.NewKeyedMutex()

	tracker := dispatch.NewTracker(
		attemptLedger, alertStore, keyed, archiver, log,
		config.GetDuration(cfg.Dispatch.ConfirmationTimeout),
	)
	defer tracker.Stop()

	// Without a status callback URL there is no webhook traffic, so delivery
	// outcomes are simulated.
	var confirmer dispatch.Confirmer
	if cfg.Providers.SMS.Twilio.StatusCallbackURL == "" {
		confirmer = dispatch.NewSimulator(
			tracker,
			config.GetDuration(cfg.Dispatch.SettleMinDelay),
			config.GetDuration(cfg.Dispatch.SettleMaxDelay),
			log,
		)
		zapLog.Info("Delivery confirmations will be simulated")
	}

	coordinator := dispatch.NewCoordinator(dispatch.CoordinatorParams{
		Store:          alertStore,
		Resolver:       resolver,
		Registry:       registry,
		Ledger:         attemptLedger,
		Composer:       compose.New(cfg.Providers.EmergencyPhone, cfg.Providers.EmergencyEmail),
		Tracker:        tracker,
		Confirmer:      confirmer,
		Archiver:       archiver,
		KeyedMutex:     keyed,
		Observability:  obs,
		Logger:         log,
		WorkerPoolSize: cfg.Dispatch.WorkerPoolSize,
	})

	go alertSvc.RunExpirySweep(ctx, config.GetDuration(cfg.Dispatch.ExpirySweepInterval))

	// --- HTTP Server ---
	server := api.NewServer(alertSvc, coordinator, tracker, log)
	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Alert engine stopped gracefully")
}

// registerSMSProviders builds the SMS chain in preferred, fallback order.
func registerSMSProviders(registry *providers.Registry, cfg *config.Config, client *httpclient.Client, log logger.Logger, zapLog *zap.Logger) {
	adapters := map[string]providers.Provider{
		providers.TwilioName: providers.NewTwilio(providers.TwilioConfig{
			AccountSID:        cfg.Providers.SMS.Twilio.AccountSID,
			AuthToken:         cfg.Providers.SMS.Twilio.AuthToken,
			FromNumber:        cfg.Providers.SMS.Twilio.FromNumber,
			BaseURL:           cfg.Providers.SMS.Twilio.BaseURL,
			StatusCallbackURL: cfg.Providers.SMS.Twilio.StatusCallbackURL,
		}, client),
		providers.TextBeltName: providers.NewTextBelt(providers.TextBeltConfig{
			APIKey:  cfg.Providers.SMS.TextBelt.APIKey,
			BaseURL: cfg.Providers.SMS.TextBelt.BaseURL,
		}, client),
	}

	if cfg.Providers.SMS.SNS.Enabled {
		sns, err := providers.NewSNSFromRegion(context.Background(), cfg.Providers.SMS.SNS.Region, providers.SNSConfig{
			Enabled:  true,
			SenderID: cfg.Providers.SMS.SNS.SenderID,
		})
		if err != nil {
			zapLog.Fatal("SNS client failed", zap.Error(err))
		}
		adapters[providers.SNSName] = sns
	}

	registerChain(registry, "sms", cfg.Providers.SMS.Preferred, cfg.Providers.SMS.Fallback, adapters, log)
}

// registerEmailProviders builds the email chain in preferred, fallback order.
func registerEmailProviders(registry *providers.Registry, cfg *config.Config, client *httpclient.Client, log logger.Logger, zapLog *zap.Logger) {
	adapters := map[string]providers.Provider{
		providers.SendGridName: providers.NewSendGrid(providers.SendGridConfig{
			APIKey:    cfg.Providers.Email.SendGrid.APIKey,
			FromEmail: cfg.Providers.Email.SendGrid.FromEmail,
			BaseURL:   cfg.Providers.Email.SendGrid.BaseURL,
		}, client),
	}

	if cfg.Providers.Email.SES.Enabled {
		ses, err := providers.NewSESFromRegion(context.Background(), cfg.Providers.Email.SES.Region, providers.SESConfig{
			Enabled:   true,
			FromEmail: cfg.Providers.Email.SES.FromEmail,
		})
		if err != nil {
			zapLog.Fatal("SES client failed", zap.Error(err))
		}
		adapters[providers.SESName] = ses
	}

	registerChain(registry, "email", cfg.Providers.Email.Preferred, cfg.Providers.Email.Fallback, adapters, log)
}

func registerChain(registry *providers.Registry, channel, preferred, fallback string, adapters map[string]providers.Provider, log logger.Logger) {
	seen := make(map[string]bool)
	for _, name := range []string{preferred, fallback} {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		p, ok := adapters[name]
		if !ok {
			log.Warn("unknown provider in config, skipped", map[string]interface{}{
				"channel":  channel,
				"provider": name,
			})
			continue
		}
		registry.Register(channel, p)
	}
}
