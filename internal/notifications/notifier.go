// Package notifications publishes social events to per-user Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"warbler/internal/featureflags"

	"github.com/redis/go-redis/v9"
)

// Event types published to the recipient's channel.
const (
	EventFollowed     = "followed"
	EventMessageLiked = "message_liked"
)

// Event is the JSON payload delivered on a user channel.
type Event struct {
	Type      string    `json:"type"`
	ActorID   uint      `json:"actor_id"`
	MessageID uint      `json:"message_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb   *redis.Client
	flags *featureflags.Set
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// WithFlags gates each event type on its feature flag for the recipient.
func (n *Notifier) WithFlags(flags *featureflags.Set) *Notifier {
	n.flags = flags
	return n
}

// UserChannel returns the channel name for a user's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// NotifyFollowed tells followedID that followerID started following them.
func (n *Notifier) NotifyFollowed(ctx context.Context, followerID, followedID uint) error {
	if n == nil || !n.flags.Enabled(featureflags.FollowNotifications, followedID) {
		return nil
	}
	return n.PublishUser(ctx, followedID, Event{Type: EventFollowed, ActorID: followerID})
}

// NotifyMessageLiked tells authorID that likerID liked one of their messages.
func (n *Notifier) NotifyMessageLiked(ctx context.Context, likerID, authorID, messageID uint) error {
	if n == nil || !n.flags.Enabled(featureflags.LikeNotifications, authorID) {
		return nil
	}
	return n.PublishUser(ctx, authorID, Event{Type: EventMessageLiked, ActorID: likerID, MessageID: messageID})
}
