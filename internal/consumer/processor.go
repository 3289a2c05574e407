// Package consumer pulls envelope messages from the stream and drives them
// through the classification handlers.
package consumer

import (
	"context"
	"time"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/infrastructure/observability"
	infraredis "github.com/cassiomorais/caseflow/internal/infrastructure/redis"
	"github.com/cassiomorais/caseflow/internal/service/envelopehandlers"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// envelopeField is the stream entry field carrying the envelope JSON.
const envelopeField = "envelope"

// MessageSource reads envelope messages from the stream. DeliveryCount
// reports deliveries including the current one, so a message seen for the
// first time reports 1.
type MessageSource interface {
	Read(ctx context.Context) ([]redis.XMessage, error)
	Ack(ctx context.Context, messageID string) error
	DeliveryCount(ctx context.Context, messageID string) (int64, error)
	ClaimStale(ctx context.Context, minIdle time.Duration) ([]redis.XMessage, error)
}

// DeadLetterer parks poisoned messages.
type DeadLetterer interface {
	PublishToDeadLetter(ctx context.Context, stream, messageID, reason string, original map[string]any) error
}

// Lock is a held per-envelope lock.
type Lock interface {
	Release(ctx context.Context) error
}

// EnvelopeLocker serializes processing per envelope across instances.
type EnvelopeLocker interface {
	Acquire(ctx context.Context, envelopeID string) (Lock, bool, error)
}

// RedisLocker adapts the redis lock factory to the EnvelopeLocker interface.
type RedisLocker struct {
	Locker *infraredis.Locker
}

func (r RedisLocker) Acquire(ctx context.Context, envelopeID string) (Lock, bool, error) {
	lock, ok, err := r.Locker.Acquire(ctx, envelopeID)
	if err != nil || !ok {
		return nil, false, err
	}
	return lock, true, nil
}

// Handler processes a parsed envelope.
type Handler interface {
	Handle(ctx context.Context, env *envelope.Envelope, deliveryCount int64) (envelopehandlers.Result, error)
}

// Notifier reports terminal envelope outcomes.
type Notifier interface {
	Notify(ctx context.Context, envelopeID string, result envelopehandlers.Result) error
}

// Processor consumes envelope messages one at a time. A message is only
// acknowledged once its envelope reached a terminal outcome (processed and
// notified, or dead-lettered); recoverable failures leave it pending so the
// stream redelivers it.
type Processor struct {
	source           MessageSource
	deadLetterer     DeadLetterer
	deadLetterStream string
	locker           EnvelopeLocker
	handler          Handler
	notifier         Notifier
	maxDeliveryCount int64
	claimMinIdle     time.Duration
	metrics          *observability.Metrics
	logger           zerolog.Logger
}

// NewProcessor creates an envelope processor.
func NewProcessor(
	source MessageSource,
	deadLetterer DeadLetterer,
	deadLetterStream string,
	locker EnvelopeLocker,
	handler Handler,
	notifier Notifier,
	maxDeliveryCount int64,
	claimMinIdle time.Duration,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		source:           source,
		deadLetterer:     deadLetterer,
		deadLetterStream: deadLetterStream,
		locker:           locker,
		handler:          handler,
		notifier:         notifier,
		maxDeliveryCount: maxDeliveryCount,
		claimMinIdle:     claimMinIdle,
		metrics:          metrics,
		logger:           logger.With().Str("component", "envelope-consumer").Logger(),
	}
}

// Run consumes messages until ctx is cancelled. Stale pending messages left
// by crashed instances are claimed periodically.
func (p *Processor) Run(ctx context.Context) error {
	claimTicker := time.NewTicker(p.claimMinIdle)
	defer claimTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-claimTicker.C:
			p.claimStale(ctx)
		default:
		}

		messages, err := p.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error().Err(err).Msg("Failed to read from envelope stream")
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			p.ProcessMessage(ctx, msg)
		}
	}
}

func (p *Processor) claimStale(ctx context.Context) {
	messages, err := p.source.ClaimStale(ctx, p.claimMinIdle)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to claim stale messages")
		return
	}
	for _, msg := range messages {
		p.ProcessMessage(ctx, msg)
	}
}

// ProcessMessage drives a single stream message to a terminal or retriable
// state.
func (p *Processor) ProcessMessage(ctx context.Context, msg redis.XMessage) {
	log := p.logger.With().Str("message_id", msg.ID).Logger()

	body, ok := msg.Values[envelopeField].(string)
	if !ok {
		p.deadLetter(ctx, msg, "message has no envelope payload", log)
		return
	}

	env, err := envelope.Parse([]byte(body))
	if err != nil {
		log.Error().Err(err).Msg("Rejecting invalid envelope message")
		p.deadLetter(ctx, msg, err.Error(), log)
		return
	}

	log = log.With().
		Str("envelope_id", env.ID).
		Str("classification", string(env.Classification)).
		Str("zip_file_name", env.ZipFileName).
		Logger()

	lock, acquired, err := p.locker.Acquire(ctx, env.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to acquire envelope lock")
		return
	}
	if !acquired {
		// Another instance is on it; the message stays pending and will be
		// redelivered or claimed later.
		log.Info().Msg("Envelope is locked by another consumer, skipping")
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to release envelope lock")
		}
	}()

	deliveries, err := p.source.DeliveryCount(ctx, msg.ID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read delivery count, assuming first delivery")
		deliveries = 1
	}
	// Handlers count the deliveries before this attempt, so the first
	// delivery hands them 0.
	deliveryCount := deliveries - 1

	started := time.Now()
	result, err := p.handler.Handle(ctx, env, deliveryCount)
	p.metrics.EnvelopeDuration.WithLabelValues(string(env.Classification)).Observe(time.Since(started).Seconds())

	if err != nil {
		p.resolveFailure(ctx, msg, env, deliveryCount, err, log)
		return
	}

	if err := p.notifier.Notify(ctx, env.ID, result); err != nil {
		// Leave the message pending; reprocessing is idempotent and the
		// notification must go out at least once.
		log.Error().Err(err).Msg("Failed to publish processed envelope notification")
		return
	}

	if err := p.source.Ack(ctx, msg.ID); err != nil {
		log.Error().Err(err).Msg("Failed to ack processed envelope message")
		return
	}

	p.metrics.EnvelopesProcessed.WithLabelValues(string(env.Classification), string(result.Action)).Inc()
	log.Info().
		Int64("ccd_id", result.CcdID).
		Str("action", string(result.Action)).
		Msg("Envelope processed")
}

func (p *Processor) resolveFailure(
	ctx context.Context,
	msg redis.XMessage,
	env *envelope.Envelope,
	deliveryCount int64,
	handleErr error,
	log zerolog.Logger,
) {
	if domainerrors.IsRecoverable(handleErr) {
		// deliveryCount is the deliveries before this attempt; this attempt
		// is delivery deliveryCount+1.
		if deliveryCount+1 < p.maxDeliveryCount {
			log.Warn().Err(handleErr).Int64("delivery_count", deliveryCount).
				Msg("Envelope handling failed, leaving message for redelivery")
			return
		}
		log.Error().Err(handleErr).Int64("delivery_count", deliveryCount).
			Msg("Envelope exhausted its redeliveries, dead-lettering")
		p.deadLetter(ctx, msg, handleErr.Error(), log)
		return
	}

	log.Error().Err(handleErr).Msg("Envelope failed terminally, dead-lettering")
	p.deadLetter(ctx, msg, handleErr.Error(), log)
}

func (p *Processor) deadLetter(ctx context.Context, msg redis.XMessage, reason string, log zerolog.Logger) {
	if err := p.deadLetterer.PublishToDeadLetter(ctx, p.deadLetterStream, msg.ID, reason, msg.Values); err != nil {
		// The message stays pending so nothing is lost; the next delivery
		// will try to park it again.
		log.Error().Err(err).Msg("Failed to publish message to dead-letter stream")
		return
	}
	if err := p.source.Ack(ctx, msg.ID); err != nil {
		log.Error().Err(err).Msg("Failed to ack dead-lettered message")
		return
	}
	p.metrics.EnvelopesDead.WithLabelValues("handling_failed").Inc()
}
