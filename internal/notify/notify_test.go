package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
)

func setupTestQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	q, err := NewRedisQueue("redis://"+s.Addr(), "comments:notifications")
	if err != nil {
		t.Fatalf("failed to create redis queue: %v", err)
	}
	t.Cleanup(func() { q.Close() })
	return q, s
}

func TestNewRedisQueue_BadURL(t *testing.T) {
	if _, err := NewRedisQueue("not a url", "k"); err == nil {
		t.Error("expected parse error")
	}
}

func TestRedisQueue_Notify(t *testing.T) {
	q, s := setupTestQueue(t)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return fixed }

	ctx := context.Background()
	notes := []models.Notification{
		{Type: models.NotifyReply, RecipientID: 1, PageID: 9, PageTitle: "User:Bob", Agent: models.Author{ID: 3, Name: "Carol"}, CommentID: 42, Wikitext: "hi"},
		{Type: models.NotifyMention, RecipientID: 2, PageID: 9, PageTitle: "User:Bob", Agent: models.Author{ID: 3, Name: "Carol"}, CommentID: 42, Wikitext: "hi"},
	}
	for _, n := range notes {
		if err := q.Notify(ctx, n); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}

	items, err := s.List("comments:notifications")
	if err != nil {
		t.Fatalf("reading list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("queue length = %d, want 2", len(items))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(items[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["type"] != "reply" {
		t.Errorf("type = %v, want reply", first["type"])
	}
	if first["recipient"] != float64(1) {
		t.Errorf("recipient = %v, want 1", first["recipient"])
	}
	if first["commentId"] != float64(42) {
		t.Errorf("commentId = %v", first["commentId"])
	}
	if first["createdAt"] != "2024-01-01T00:00:00Z" {
		t.Errorf("createdAt = %v", first["createdAt"])
	}
	agent, _ := first["agent"].(map[string]any)
	if agent["name"] != "Carol" {
		t.Errorf("agent = %v", first["agent"])
	}
}

func TestRedisQueue_NotifyServerDown(t *testing.T) {
	q, s := setupTestQueue(t)
	s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Notify(ctx, models.Notification{Type: models.NotifyReply, RecipientID: 1}); err == nil {
		t.Error("expected error when redis is unavailable")
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zerolog.Nop())
	if err := n.Notify(context.Background(), models.Notification{Type: models.NotifyPageOwner, RecipientID: 5}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
}
