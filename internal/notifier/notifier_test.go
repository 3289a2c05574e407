package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/cassiomorais/caseflow/internal/service/envelopehandlers"
	"github.com/cassiomorais/caseflow/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_PublishesTerminalOutcome(t *testing.T) {
	publisher := &testutil.MockPublisher{}
	notifier := NewProcessedEnvelopeNotifier(publisher, "envelopes:processed", zerolog.Nop())

	result := envelopehandlers.Result{CcdID: 1234, Action: envelopehandlers.AutoCreatedCase}
	err := notifier.Notify(context.Background(), "envelope-1", result)
	require.NoError(t, err)

	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "envelopes:processed", published[0].Stream)
	assert.Equal(t, "envelope-1", published[0].Values["envelope_id"])
	assert.Equal(t, int64(1234), published[0].Values["ccd_id"])
	assert.Equal(t, "AUTO_CREATED_CASE", published[0].Values["envelope_ccd_action"])
	assert.NotNil(t, published[0].Values["timestamp"])
}

func TestNotify_PublishFailure(t *testing.T) {
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, stream string, values map[string]any) error {
			return errors.New("stream unavailable")
		},
	}
	notifier := NewProcessedEnvelopeNotifier(publisher, "envelopes:processed", zerolog.Nop())

	err := notifier.Notify(context.Background(), "envelope-1", envelopehandlers.Result{})
	require.Error(t, err)
}
