// Package dispatcher reacts to post-created events and fans the new post
// out to the subscribers of every attached category, one email per
// (category, subscriber) pair. It runs outside the request path with
// fire-and-forget semantics: nothing here ever propagates back to the
// action that created the post.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/Luismorlan/newsportal/notifier"
	. "github.com/Luismorlan/newsportal/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DefaultDispatchDelay gives post creation and categorization, which can
// land in separate steps, a moment to settle before the fresh re-read. Not
// a correctness requirement.
const DefaultDispatchDelay = 1 * time.Second

// At most this many fan-outs run concurrently. Excess events queue on the
// bus until a slot frees up.
const maxConcurrentDispatches = 16

// Store is the post/category collaborator the dispatcher reads from.
type Store interface {
	GetPostWithCategories(id string) (*model.Post, error)
	SubscribersOf(categoryID string) ([]*model.User, error)
}

type Config struct {
	// Name of the dispatcher module.
	Name string

	// Site origin used to build absolute post URLs.
	BaseURL string

	// Wait this long after the event before dispatching.
	DispatchDelay time.Duration
}

type Dispatcher struct {
	Config   Config
	Store    Store
	Notifier notifier.Notifier
	EventBus *gochannel.GoChannel

	sem chan struct{}
}

func NewDispatcher(config Config, store Store, n notifier.Notifier, bus *gochannel.GoChannel) *Dispatcher {
	return &Dispatcher{
		Config:   config,
		Store:    store,
		Notifier: n,
		EventBus: bus,
		sem:      make(chan struct{}, maxConcurrentDispatches),
	}
}

// RunModule consumes post-created events until the context is cancelled.
// Each event is handled in its own short-lived goroutine, bounded by a
// semaphore, so a slow fan-out never delays the next post's notifications.
func (d *Dispatcher) RunModule(ctx context.Context) error {
	messages, err := d.EventBus.Subscribe(ctx, TopicPostCreated)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		var event PostCreatedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			Log.Error("fail to decode post created event: ", err)
			continue
		}

		d.sem <- struct{}{}
		go func(postID string) {
			defer func() { <-d.sem }()

			if d.Config.DispatchDelay > 0 {
				time.Sleep(d.Config.DispatchDelay)
			}
			d.Dispatch(postID)
		}(event.PostID)
	}
	return nil
}

func (d *Dispatcher) Name() string {
	return d.Config.Name
}

// Dispatch notifies all subscribers of all categories the post is attached
// to. The post and its categories are re-read fresh from the store rather
// than trusting the in-memory object that triggered the event. A subscriber
// of two attached categories receives two separate notifications. Every
// failure is logged and contained, recipients are exhausted regardless.
func (d *Dispatcher) Dispatch(postID string) {
	defer func() {
		if r := recover(); r != nil {
			Log.Errorf("panic while dispatching notifications for post %s: %v", postID, r)
		}
	}()

	post, err := d.Store.GetPostWithCategories(postID)
	if err != nil {
		Log.Errorf("fail to re-read post %s for notification: %s", postID, err)
		return
	}
	if len(post.Categories) == 0 {
		Log.Infof("post %s has no categories, nothing to notify", postID)
		return
	}

	url := d.Config.BaseURL + post.AbsolutePath()

	for _, category := range post.Categories {
		subscribers, err := d.Store.SubscribersOf(category.Id)
		if err != nil {
			Log.Errorf("fail to load subscribers of category %s: %s", category.Name, err)
			continue
		}
		if len(subscribers) == 0 {
			continue
		}

		subject := fmt.Sprintf("New post in %q: %s", category.Name, post.Title)
		for _, subscriber := range subscribers {
			htmlBody, textBody, err := renderNewPostEmail(subscriber, category, post, url)
			if err != nil {
				Log.Errorf("fail to render notification for %s: %s", subscriber.Email, err)
				continue
			}
			if err := d.Notifier.Notify(subscriber.Email, subject, htmlBody, textBody); err != nil {
				Log.Errorf("fail to notify %s about post %s: %s", subscriber.Email, post.Id, err)
				continue
			}
		}
	}
}
