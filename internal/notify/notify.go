// Package notify delivers comment notifications to recipients.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
)

// Notifier delivers one notification
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// message is the queued payload read by the delivery worker
type message struct {
	models.Notification
	CreatedAt time.Time `json:"createdAt"`
}

// RedisQueue appends notifications to a Redis list for an external delivery worker
type RedisQueue struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisQueue connects to redisURL and verifies the connection
func NewRedisQueue(redisURL, key string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisQueueWithClient(client, key), nil
}

// NewRedisQueueWithClient creates a queue from an existing client
func NewRedisQueueWithClient(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key, now: time.Now}
}

// Notify implements Notifier
func (q *RedisQueue) Notify(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(message{Notification: n, CreatedAt: q.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// LogNotifier writes notifications to the log. Used when no queue is configured.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(ctx context.Context, note models.Notification) error {
	n.log.Info().
		Str("type", string(note.Type)).
		Int64("recipient", note.RecipientID).
		Int64("comment_id", note.CommentID).
		Str("page", note.PageTitle).
		Str("agent", note.Agent.Name).
		Msg("Notification")
	return nil
}
