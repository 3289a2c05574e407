// Package notifier emits processed-envelope notifications once an envelope
// reaches a terminal outcome.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/cassiomorais/caseflow/internal/service/envelopehandlers"
	"github.com/rs/zerolog"
)

// Publisher appends values to a stream.
type Publisher interface {
	Publish(ctx context.Context, stream string, values map[string]any) error
}

// ProcessedEnvelopeNotifier tells the upstream ingestion pipeline that an
// envelope has been fully processed. Delivery is at-least-once: the envelope
// message is only acknowledged after the notification is published.
type ProcessedEnvelopeNotifier struct {
	producer Publisher
	stream   string
	logger   zerolog.Logger
}

// NewProcessedEnvelopeNotifier creates a processed-envelope notifier.
func NewProcessedEnvelopeNotifier(producer Publisher, stream string, logger zerolog.Logger) *ProcessedEnvelopeNotifier {
	return &ProcessedEnvelopeNotifier{
		producer: producer,
		stream:   stream,
		logger:   logger.With().Str("component", "processed-envelope-notifier").Logger(),
	}
}

// Notify publishes the terminal outcome for an envelope.
func (n *ProcessedEnvelopeNotifier) Notify(ctx context.Context, envelopeID string, result envelopehandlers.Result) error {
	err := n.producer.Publish(ctx, n.stream, map[string]any{
		"envelope_id":         envelopeID,
		"ccd_id":              result.CcdID,
		"envelope_ccd_action": string(result.Action),
		"timestamp":           time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("notify processed envelope %s: %w", envelopeID, err)
	}

	n.logger.Info().
		Str("envelope_id", envelopeID).
		Int64("ccd_id", result.CcdID).
		Str("action", string(result.Action)).
		Msg("Published processed envelope notification")
	return nil
}
