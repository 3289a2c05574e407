package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cassiomorais/caseflow/internal/bootstrap"
	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/client/caseupdate"
	paymentclient "github.com/cassiomorais/caseflow/internal/client/payment"
	"github.com/cassiomorais/caseflow/internal/client/transformation"
	"github.com/cassiomorais/caseflow/internal/consumer"
	"github.com/cassiomorais/caseflow/internal/infrastructure/config"
	infraRedis "github.com/cassiomorais/caseflow/internal/infrastructure/redis"
	"github.com/cassiomorais/caseflow/internal/notifier"
	"github.com/cassiomorais/caseflow/internal/repository/postgres"
	"github.com/cassiomorais/caseflow/internal/service/casecreation"
	svcCaseupdate "github.com/cassiomorais/caseflow/internal/service/caseupdate"
	"github.com/cassiomorais/caseflow/internal/service/envelopehandlers"
	"github.com/cassiomorais/caseflow/internal/service/exceptionrecord"
	"github.com/cassiomorais/caseflow/internal/service/payments"
	"github.com/cassiomorais/caseflow/internal/tasks"
	"github.com/cassiomorais/caseflow/pkg/retry"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "caseflow-worker", "caseflow_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories and services ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	updatePaymentRepo := postgres.NewUpdatePaymentRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	paymentService := payments.NewService(paymentRepo, updatePaymentRepo, txManager, app.Logger)

	services := config.NewServiceConfigProvider(app.Config.Services)
	ccdClient := ccd.NewClient(app.Config.Ccd.BaseURL, ccd.NewStaticTokenProvider(app.Config.Ccd.AuthToken), app.Logger)
	caseFinder := ccd.NewCaseFinder(ccdClient, app.Logger)

	transformer := transformation.NewEnvelopeTransformer(services, app.Logger)
	updateDataClient := caseupdate.NewClient(services, app.Logger)

	exceptionRecordCreator := exceptionrecord.NewCreator(ccdClient, app.Logger)
	caseCreator := casecreation.NewAutoCaseCreator(ccdClient, transformer, services, app.Logger)
	caseUpdater := svcCaseupdate.NewAutoCaseUpdater(ccdClient, updateDataClient, app.Logger)
	evidenceAttacher := envelopehandlers.NewAttachDocsToSupplementaryEvidence(ccdClient, app.Logger)

	envelopeHandler := envelopehandlers.NewEnvelopeHandler(
		envelopehandlers.NewExceptionClassificationHandler(exceptionRecordCreator, paymentService),
		envelopehandlers.NewNewApplicationHandler(caseCreator, exceptionRecordCreator, paymentService),
		envelopehandlers.NewSupplementaryEvidenceHandler(caseFinder, evidenceAttacher, exceptionRecordCreator, paymentService, app.Logger),
		envelopehandlers.NewSupplementaryEvidenceWithOcrHandler(caseUpdater, exceptionRecordCreator, paymentService, services),
	)

	// --- Stream consumer ---
	consumerCfg := app.Config.Consumer
	source := infraRedis.NewEnvelopeConsumer(
		app.Redis,
		consumerCfg.Stream,
		consumerCfg.ConsumerGroup,
		app.Config.InstanceID,
		consumerCfg.BatchSize,
		consumerCfg.BlockDuration,
	)
	if err := source.CreateGroup(ctx); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to create consumer group (may already exist)")
	}

	producer := infraRedis.NewStreamProducer(app.Redis)
	processedNotifier := notifier.NewProcessedEnvelopeNotifier(producer, consumerCfg.ProcessedStream, app.Logger)
	locker := infraRedis.NewLocker(app.Redis, consumerCfg.LockTTL)

	processor := consumer.NewProcessor(
		source,
		producer,
		consumerCfg.DeadLetterStream,
		consumer.RedisLocker{Locker: locker},
		envelopeHandler,
		processedNotifier,
		consumerCfg.MaxDeliveryCount,
		consumerCfg.ClaimMinIdle,
		app.Metrics,
		app.Logger,
	)

	// --- Payment posting tasks ---
	paymentCfg := app.Config.Payment
	poster := paymentclient.NewClient(paymentCfg.ProcessorURL, app.Logger)
	retryCfg := retry.Config{Attempts: uint(paymentCfg.MaxRetry), Delay: paymentCfg.RetryDelay}
	paymentTask := tasks.NewPaymentProcessingTask(paymentRepo, poster, retryCfg, app.Logger)
	updatePaymentTask := tasks.NewUpdatePaymentProcessingTask(updatePaymentRepo, poster, retryCfg, app.Logger)

	app.Logger.Info().
		Str("stream", consumerCfg.Stream).
		Str("group", consumerCfg.ConsumerGroup).
		Str("consumer", app.Config.InstanceID).
		Msg("Worker started, listening for envelopes...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Envelope consumer.
	g.Go(func() error {
		return processor.Run(gCtx)
	})

	// 2. Scheduled payment posting tasks.
	if paymentCfg.Enabled {
		g.Go(func() error {
			return runOnTicker(gCtx, paymentCfg.NewPaymentsInterval, paymentTask.Run)
		})
		g.Go(func() error {
			return runOnTicker(gCtx, paymentCfg.UpdatedPaymentsInterval, updatePaymentTask.Run)
		})
	}

	// 3. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

func runOnTicker(ctx context.Context, interval time.Duration, run func(context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			run(ctx)
		}
	}
}
