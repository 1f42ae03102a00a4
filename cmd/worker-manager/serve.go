// cmd/worker-manager/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsclient "chatnil-workers/internal/common/aws"
	"chatnil-workers/internal/common/camunda"
	"chatnil-workers/internal/common/config"
	"chatnil-workers/internal/common/database"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/observability"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/migrations"
	"chatnil-workers/internal/scoring/fmv"
	"chatnil-workers/internal/scoring/matching"

	scoredeal "chatnil-workers/internal/workers/compliance/score-deal"
	summarizedeals "chatnil-workers/internal/workers/compliance/summarize-deals"
	queryscoringdata "chatnil-workers/internal/workers/data-access/query-scoring-data"
	calculatefmv "chatnil-workers/internal/workers/fmv/calculate-fmv"
	recalculatefmv "chatnil-workers/internal/workers/fmv/recalculate-fmv"
	stalescoresweep "chatnil-workers/internal/workers/fmv/stale-score-sweep"
	"chatnil-workers/internal/workers/fmv/store"
	calculatematchscore "chatnil-workers/internal/workers/matching/calculate-match-score"
	matchstream "chatnil-workers/internal/workers/notifications/match-stream"
	sendnotification "chatnil-workers/internal/workers/notifications/send-notification"
	activities "chatnil-workers/pkg/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the job workers, admin server and schedulers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before starting workers")
	return cmd
}

// connect retries fn with backoff until it succeeds or the attempts run out.
func connect(ctx context.Context, name string, maxRetries int, log *zap.Logger, fn func(ctx context.Context) error) error {
	policy := retry.Policy{
		MaxRetries:   maxRetries,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Factor:       2,
		ShouldRetry:  func(error, int) bool { return true },
		OnRetry: func(attempt int, err error, delay time.Duration) {
			log.Warn(fmt.Sprintf("%s failed, retrying...", name),
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
		},
	}
	if err := retry.Do(ctx, policy, fn); err != nil {
		return fmt.Errorf("%s failed after %d retries: %w", name, maxRetries, err)
	}
	log.Info(fmt.Sprintf("%s connected successfully", name))
	return nil
}

func runServe(migrate bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.NewService(cfg.Logging.Level, cfg.Logging.Format, cfg.App.Name, cfg.App.Version)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel meter unavailable, job metrics limited to prometheus", zap.Error(err))
	}

	ctx := context.Background()

	// --- Connections ---
	var zeebe *camunda.Client
	err = connect(ctx, "Zeebe client", 10, zapLog, func(ctx context.Context) error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			RetryPolicy:            retry.DefaultPolicy(),
		})
		return err
	})
	if err != nil {
		return err
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := connect(ctx, "PostgreSQL", 15, zapLog, pg.Ping); err != nil {
		return err
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := connect(ctx, "Elasticsearch", 15, zapLog, es.Ping); err != nil {
		return err
	}
	if created, err := es.EnsureIndex(ctx, cfg.Database.Elasticsearch.AthleteIndex, store.ComparablesMapping); err != nil {
		zapLog.Warn("athlete index check failed, comparables may be unavailable", zap.Error(err))
	} else if created {
		zapLog.Info("athlete index created", zap.String("index", cfg.Database.Elasticsearch.AthleteIndex))
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()
	if err := connect(ctx, "Redis", 10, zapLog, rdb.Ping); err != nil {
		return err
	}

	if migrate {
		if err := migrations.Up(ctx, pg.DB, log); err != nil {
			return err
		}
	}

	// --- Shared components ---
	calculator, err := fmv.NewCalculator()
	if err != nil {
		return fmt.Errorf("fmv engine: %w", err)
	}
	matcher, err := matching.NewMatcher()
	if err != nil {
		return fmt.Errorf("match engine: %w", err)
	}
	log.Info("scoring engines ready", map[string]interface{}{
		"fmvEngine":     calculator.Engine().Name(),
		"fmvDimensions": calculator.Engine().DimensionNames(),
		"matchFactors":  matching.FactorNames(),
	})

	var (
		email sendnotification.EmailSender
		sms   sendnotification.SMSSender
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return fmt.Errorf("aws config: %w", err)
		}
		if cfg.Notifications.Email.Enabled {
			email = awsclient.NewSESClient(awsCfg, cfg.Notifications.Email.FromEmail)
		}
		if cfg.Notifications.SMS.Enabled {
			sms = awsclient.NewSNSClient(awsCfg, cfg.Notifications.SMS.SenderID)
		}
	}

	notifyCfg := sendnotification.ConfigFrom(cfg.Notifications, config.GetWorkerConfig(cfg, sendnotification.TaskType))
	dispatcher := sendnotification.NewDispatcher(notifyCfg, pg.DB, email, sms, log)

	counter := store.NewDailyCounter(rdb.Client)
	fmvRepo := store.NewRepository(pg.DB)
	comparables := store.NewComparablesIndex(es.Client, cfg.Database.Elasticsearch.AthleteIndex)

	// --- Workers ---
	registry := camunda.NewRegistry(zeebe.GetClient(), obs, zapLog)

	wcfg := config.GetWorkerConfig(cfg, sendnotification.TaskType)
	registry.Start(sendnotification.TaskType, wcfg,
		sendnotification.NewHandler(notifyCfg, dispatcher, log).Handle)

	wcfg = config.GetWorkerConfig(cfg, calculatefmv.TaskType)
	registry.Start(calculatefmv.TaskType, wcfg,
		calculatefmv.NewHandler(calculatefmv.ConfigFrom(cfg.Scoring, wcfg), calculator, comparables, log).Handle)

	wcfg = config.GetWorkerConfig(cfg, recalculatefmv.TaskType)
	recalc := recalculatefmv.NewHandler(recalculatefmv.ConfigFrom(cfg.Scoring, wcfg),
		calculator, counter, fmvRepo, comparables, dispatcher, log)
	registry.Start(recalculatefmv.TaskType, wcfg, recalc.Handle)

	wcfg = config.GetWorkerConfig(cfg, scoredeal.TaskType)
	scoreDeal, err := scoredeal.NewHandler(scoredeal.ConfigFrom(cfg.Scoring, wcfg),
		scoredeal.NewPostgresRepository(pg.DB), log)
	if err != nil {
		return fmt.Errorf("failed to create %s handler: %w", scoredeal.TaskType, err)
	}
	registry.Start(scoredeal.TaskType, wcfg, scoreDeal.Handle)

	wcfg = config.GetWorkerConfig(cfg, summarizedeals.TaskType)
	summarize, err := summarizedeals.NewHandler(summarizedeals.ConfigFrom(cfg.Scoring, wcfg),
		summarizedeals.NewPostgresDealLoader(pg.DB), log)
	if err != nil {
		return fmt.Errorf("failed to create %s handler: %w", summarizedeals.TaskType, err)
	}
	registry.Start(summarizedeals.TaskType, wcfg, summarize.Handle)

	wcfg = config.GetWorkerConfig(cfg, calculatematchscore.TaskType)
	matchCfg := calculatematchscore.ConfigFrom(cfg.Scoring, wcfg)
	profiles := calculatematchscore.NewProfileStore(pg.DB, rdb.Client, matchCfg.CacheTTL, log)
	registry.Start(calculatematchscore.TaskType, wcfg,
		calculatematchscore.NewHandler(matchCfg, matcher, profiles, pg.DB, log).Handle)

	wcfg = config.GetWorkerConfig(cfg, queryscoringdata.TaskType)
	registry.Start(queryscoringdata.TaskType, wcfg,
		queryscoringdata.NewHandler(queryscoringdata.ConfigFrom(cfg.Scoring, wcfg), pg.DB, log).Handle)

	zapLog.Info("workers registered", zap.Strings("taskTypes", registry.TaskTypes()))
	if reg, err := activities.LoadRegistry(registryPath); err != nil {
		zapLog.Warn("activity registry unavailable", zap.Error(err))
	} else if err := checkRegistry(reg); err != nil {
		zapLog.Warn("activity registry out of date", zap.Error(err))
	}

	// --- Stale score sweep ---
	var scheduler *stalescoresweep.Scheduler
	if cfg.Scheduler.Enabled {
		sweepCfg := stalescoresweep.ConfigFrom(cfg.Scoring, cfg.Scheduler)
		sweeper := stalescoresweep.NewSweeper(sweepCfg, fmvRepo, counter, dispatcher, log)
		scheduler, err = stalescoresweep.NewScheduler(sweepCfg, sweeper, log)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	// --- Admin server ---
	var stream http.Handler
	if cfg.Poller.Enabled {
		source := matchstream.NewPostgresMatchSource(pg.DB)
		pollCfg := matchstream.ConfigFrom(cfg.Poller)
		poller := matchstream.NewPoller(pollCfg, source,
			matchstream.NewRedisLastCheckStore(rdb.Client, pollCfg.LastCheckTTL), log)
		stream = matchstream.NewHandler(source, poller, log).Routes()
	}

	checks := map[string]readinessCheck{
		"postgres":      pg.Ping,
		"redis":         rdb.Ping,
		"elasticsearch": es.Ping,
		"zeebe":         zeebe.HealthCheck,
	}

	// Streams hang off streamCtx so shutdown can end them; they never go idle
	// on their own.
	streamCtx, endStreams := context.WithCancel(context.Background())
	defer endStreams()
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newRouter(checks, stream),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
	}
	go func() {
		zapLog.Info("admin server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("admin server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	endStreams()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("admin server shutdown failed", zap.Error(err))
	}

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			zapLog.Warn("stale score sweep still running at shutdown")
		}
	}

	registry.Close()
	recalc.Wait()

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("otel shutdown failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
	return nil
}
