// Package notifications delivers live feed events to connected clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"framez/internal/cache"
	"framez/internal/middleware"
	"framez/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Feed event types.
const (
	EventPostCreated         = "post_created"
	EventPostDeleted         = "post_deleted"
	EventPostReactionUpdated = "post_reaction_updated"
	EventPostReposted        = "post_reposted"
	EventCommentCreated      = "comment_created"
)

// Event is the envelope sent to live feed clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier publishes feed events to Redis. Without Redis, events are handed
// to the local sink installed by Hub.StartWiring.
type Notifier struct {
	rdb *redis.Client

	mu    sync.RWMutex
	local func(payload string)
}

// NewNotifier creates a new Notifier instance using the provided Redis client, which may be nil.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishEvent encodes ev and publishes it on the feed channel.
func (n *Notifier) PublishEvent(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	observability.FeedEventsTotal.WithLabelValues(ev.Type).Inc()

	if n.rdb != nil {
		return n.rdb.Publish(ctx, cache.FeedEventsChannel, data).Err()
	}

	n.mu.RLock()
	local := n.local
	n.mu.RUnlock()
	if local != nil {
		local(string(data))
	}
	return nil
}

func (n *Notifier) setLocalSink(fn func(payload string)) {
	n.mu.Lock()
	n.local = fn
	n.mu.Unlock()
}

// StartFeedSubscriber subscribes to the feed channel and calls onMessage for
// each payload until ctx is done. It returns once the subscription is active.
func (n *Notifier) StartFeedSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, cache.FeedEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", cache.FeedEventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in feed subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
