package dispatcher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Luismorlan/newsportal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishPostCreatedRoundTrip(t *testing.T) {
	bus := engine.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx, TopicPostCreated)
	require.NoError(t, err)

	require.NoError(t, PublishPostCreated(bus, "p1"))

	select {
	case msg := <-messages:
		msg.Ack()
		var event PostCreatedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "p1", event.PostID)
	case <-time.After(5 * time.Second):
		t.Fatal("no post created event received")
	}
}
