package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsEmissionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder()

	require.NoError(t, r.Emit(ctx, ParcelRegistered(1, "alice", "123 Main St")))
	require.NoError(t, r.Emit(ctx, ParcelVerified(1)))
	require.NoError(t, r.Emit(ctx, DocumentAdded(1, "docB")))

	trail := r.List()
	require.Len(t, trail, 3)
	assert.Equal(t, TypeParcelRegistered, trail[0].Type)
	assert.Equal(t, TypeParcelVerified, trail[1].Type)
	assert.Equal(t, TypeDocumentAdded, trail[2].Type)

	for _, e := range trail {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestRecorderListByType(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder()
	require.NoError(t, r.Emit(ctx, VerifierAdded("vera")))
	require.NoError(t, r.Emit(ctx, VerifierRemoved("vera")))
	require.NoError(t, r.Emit(ctx, VerifierAdded("victor")))

	added := r.ListByType(TypeVerifierAdded)
	require.Len(t, added, 2)
	assert.Equal(t, "vera", added[0].Identity.String())
	assert.Equal(t, "victor", added[1].Identity.String())
}

func TestChannelPublisherFeedsWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inbox := make(chan Event, 8)
	publisher := NewChannelPublisher(inbox)
	sink := NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := NewWorker(sink, inbox, logger)

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.NoError(t, publisher.Emit(ctx, ParcelRegistered(1, "alice", "123 Main St")))
	require.NoError(t, publisher.Emit(ctx, ParcelVerified(1)))

	require.Eventually(t, func() bool {
		return len(sink.List()) == 2
	}, time.Second, 10*time.Millisecond)

	trail := sink.List()
	assert.Equal(t, TypeParcelRegistered, trail[0].Type)
	assert.Equal(t, TypeParcelVerified, trail[1].Type)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestChannelPublisherHonorsCancellation(t *testing.T) {
	inbox := make(chan Event) // unbuffered, nobody reading
	publisher := NewChannelPublisher(inbox)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.Emit(ctx, ParcelVerified(1)), context.Canceled)
}
