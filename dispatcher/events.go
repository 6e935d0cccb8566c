package dispatcher

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicPostCreated carries one event per successful post creation. Edits and
// bulk loads never publish here.
const TopicPostCreated = "post.created"

// PostCreatedEvent is the bus payload. Only the id crosses the bus, the
// dispatcher re-reads everything else fresh from the store.
type PostCreatedEvent struct {
	PostID string `json:"post_id"`
}

// PublishPostCreated fires the post-created event. The caller (the creation
// handler) returns to its client without waiting for any delivery.
func PublishPostCreated(bus *gochannel.GoChannel, postID string) error {
	data, err := json.Marshal(PostCreatedEvent{PostID: postID})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return bus.Publish(TopicPostCreated, msg)
}
