package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"chatpulse/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.live.sync_state", Subject(events.TypeSyncState))
}

func TestPublishSubscribeIntegration(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}

	pub, err := NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	sub, err := NewSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan events.LiveEvent, 1)
	require.NoError(t, sub.Subscribe(ctx, Subject(events.TypeSyncState), "", func(_ context.Context, e events.LiveEvent) error {
		got <- e
		return nil
	}))

	sent := events.NewLiveEvent(events.TypeSyncState, "acct-1", map[string]interface{}{"phase": "connected"})
	require.NoError(t, pub.Publish(ctx, sent))

	select {
	case e := <-got:
		assert.Equal(t, "acct-1", e.Identifier)
		assert.Equal(t, "connected", e.Data["phase"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
