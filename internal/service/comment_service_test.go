package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/service"
	"github.com/page-comments-api/internal/spam"
	"github.com/page-comments-api/internal/validation"
)

func TestSubmit_ReplyOnUserPageWithMention(t *testing.T) {
	f := newFixture(t, service.Dependencies{})
	f.repos.Comment.Add(&models.Comment{ID: 100, PageID: bobPage.ID, ActorID: alice.ID, Wikitext: "first", CreatedAt: time.Now()})

	req := &models.SubmitRequest{ParentID: 100, Wikitext: "I agree with [[User:Alice]]"}
	comment, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if comment.ParentID == nil || *comment.ParentID != 100 {
		t.Errorf("Expected parent 100, got %v", comment.ParentID)
	}

	sent := f.notifier.Notifications()
	if len(sent) != 2 {
		t.Fatalf("Expected 2 notifications, got %d: %+v", len(sent), sent)
	}
	if sent[0].RecipientID != alice.ID || sent[0].Type != models.NotifyReply {
		t.Errorf("Expected reply to Alice first, got %+v", sent[0])
	}
	if sent[1].RecipientID != bob.ID || sent[1].Type != models.NotifyPageOwner {
		t.Errorf("Expected page-owner Bob second, got %+v", sent[1])
	}
	for _, n := range sent {
		if n.Type == models.NotifyMention {
			t.Errorf("Unexpected mention notification: %+v", n)
		}
		if n.PageTitle != "User:Bob" {
			t.Errorf("Expected target page User:Bob, got %q", n.PageTitle)
		}
		if n.CommentID != comment.ID || n.Agent.ID != carol.ID {
			t.Errorf("Notification does not describe the new comment: %+v", n)
		}
	}
}

func TestSubmit_MentionCap(t *testing.T) {
	users := mentionUsers(12)
	f := newFixture(t, service.Dependencies{}, users...)

	var b strings.Builder
	for _, u := range users {
		fmt.Fprintf(&b, "[[User:%s]] ", u.Name)
	}
	req := &models.SubmitRequest{PageID: mainPage.ID, Wikitext: b.String()}
	if _, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	sent := f.notifier.Notifications()
	if len(sent) != 10 {
		t.Fatalf("Expected 10 mention notifications, got %d", len(sent))
	}
	for i, n := range sent {
		if n.Type != models.NotifyMention {
			t.Errorf("notification %d: expected mention, got %s", i, n.Type)
		}
		if n.RecipientID != users[i].ID {
			t.Errorf("notification %d: expected %s, got recipient %d", i, users[i].Name, n.RecipientID)
		}
	}
}

func TestSubmit_MentionCapCountsOnlyNewRecipients(t *testing.T) {
	users := mentionUsers(11)
	f := newFixture(t, service.Dependencies{}, users...)

	// Carol (self), an unknown user and Bob (page owner) do not use up the mention budget
	text := "[[User:Carol]] [[User:Nobody]] [[User:Bob]] "
	for _, u := range users {
		text += "[[User:" + u.Name + "]] "
	}
	req := &models.SubmitRequest{PageID: bobPage.ID, Wikitext: text}
	if _, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	sent := f.notifier.Notifications()
	if len(sent) != 11 {
		t.Fatalf("Expected page owner plus 10 mentions, got %d", len(sent))
	}
	if sent[0].RecipientID != bob.ID || sent[0].Type != models.NotifyPageOwner {
		t.Errorf("Expected Bob as page owner, got %+v", sent[0])
	}
	if last := sent[10]; last.RecipientID != users[9].ID {
		t.Errorf("Expected last mention %s, got %d", users[9].Name, last.RecipientID)
	}
}

func TestSubmit_SubmitterNeverNotified(t *testing.T) {
	f := newFixture(t, service.Dependencies{})
	f.repos.Comment.Add(&models.Comment{ID: 100, PageID: bobSubpage.ID, ActorID: bob.ID, CreatedAt: time.Now()})

	req := &models.SubmitRequest{ParentID: 100, Wikitext: "note to self [[User:Bob]]"}
	if _, err := f.svcs.Comment.Submit(context.Background(), bob.Author(), req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sent := f.notifier.Notifications(); len(sent) != 0 {
		t.Errorf("Expected no notifications, got %+v", sent)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *fixture)
		req    models.SubmitRequest
		reason validation.Reason
	}{
		{
			name:   "no target",
			req:    models.SubmitRequest{Wikitext: "hello"},
			reason: validation.ReasonMissingTarget,
		},
		{
			name:   "whitespace only",
			req:    models.SubmitRequest{PageID: mainPage.ID, Wikitext: "   ", HTML: "\n"},
			reason: validation.ReasonEmptyContent,
		},
		{
			name:   "unknown parent",
			req:    models.SubmitRequest{ParentID: 999, Wikitext: "hello"},
			reason: validation.ReasonParentMissing,
		},
		{
			name: "deleted parent",
			setup: func(f *fixture) {
				f.repos.Comment.Add(&models.Comment{ID: 50, PageID: mainPage.ID, DeletedActor: ptr(int64(1))})
			},
			req:    models.SubmitRequest{ParentID: 50, Wikitext: "hello"},
			reason: validation.ReasonParentMissing,
		},
		{
			name: "reply to a reply",
			setup: func(f *fixture) {
				f.repos.Comment.Add(&models.Comment{ID: 50, PageID: mainPage.ID})
				f.repos.Comment.Add(&models.Comment{ID: 51, PageID: mainPage.ID, ParentID: ptr(int64(50))})
			},
			req:    models.SubmitRequest{ParentID: 51, Wikitext: "hello"},
			reason: validation.ReasonParentHasParent,
		},
		{
			name:   "unknown page",
			req:    models.SubmitRequest{PageID: 999, Wikitext: "hello"},
			reason: validation.ReasonPageMissing,
		},
		{
			name: "read-only page",
			setup: func(f *fixture) {
				f.repos.Control.Overrides[mainPage.ID] = models.ControlReadOnly
			},
			req:    models.SubmitRequest{PageID: mainPage.ID, Wikitext: "hello"},
			reason: validation.ReasonCommentsDisabled,
		},
		{
			name: "disabled page",
			setup: func(f *fixture) {
				f.repos.Control.Overrides[mainPage.ID] = models.ControlDisabled
			},
			req:    models.SubmitRequest{PageID: mainPage.ID, Wikitext: "hello"},
			reason: validation.ReasonCommentsDisabled,
		},
		{
			name:   "namespace without comments",
			req:    models.SubmitRequest{PageID: projectPage.ID, Wikitext: "hello"},
			reason: validation.ReasonCommentsDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, service.Dependencies{})
			if tt.setup != nil {
				tt.setup(f)
			}
			before := len(f.repos.Comment.Comments)

			req := tt.req
			_, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), &req)
			se, ok := service.AsSubmitError(err)
			if !ok {
				t.Fatalf("Expected SubmitError, got %v", err)
			}
			if se.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, se.Reason)
			}
			if f.repos.Comment.CreateCalls != 0 || len(f.repos.Comment.Comments) != before {
				t.Error("Rejected submission must not be stored")
			}
		})
	}
}

func TestSubmit_ReplyUsesParentPage(t *testing.T) {
	f := newFixture(t, service.Dependencies{})
	f.repos.Comment.Add(&models.Comment{ID: 100, PageID: bobPage.ID, Username: "203.0.113.9"})

	comment, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), &models.SubmitRequest{
		PageID:   mainPage.ID,
		ParentID: 100,
		Wikitext: "reply",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if comment.PageID != bobPage.ID {
		t.Errorf("Expected reply on page %d, got %d", bobPage.ID, comment.PageID)
	}
	// Anonymous parent author gets no reply notification; Bob still gets page-owner
	sent := f.notifier.Notifications()
	if len(sent) != 1 || sent[0].Type != models.NotifyPageOwner {
		t.Errorf("Expected only a page-owner notification, got %+v", sent)
	}
}

func TestSubmit_AnonymousAuthor(t *testing.T) {
	f := newFixture(t, service.Dependencies{})

	comment, err := f.svcs.Comment.Submit(context.Background(), models.Author{Name: "192.0.2.7"}, &models.SubmitRequest{
		PageID:   mainPage.ID,
		Wikitext: "  ''hello''  ",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	stored := f.repos.Comment.Comments[comment.ID]
	if stored.ActorID != 0 || stored.Username != "192.0.2.7" {
		t.Errorf("Expected anonymous author, got actor=%d username=%q", stored.ActorID, stored.Username)
	}
	if stored.Wikitext != "''hello''" {
		t.Errorf("Expected trimmed wikitext, got %q", stored.Wikitext)
	}
	if !strings.Contains(stored.HTML, "<i>hello</i>") {
		t.Errorf("Expected rendered html, got %q", stored.HTML)
	}
}

func TestSubmit_HTMLInput(t *testing.T) {
	f := newFixture(t, service.Dependencies{})

	comment, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), &models.SubmitRequest{
		PageID: mainPage.ID,
		HTML:   `<p>ping <a href="/wiki/User:Alice">Alice</a></p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if comment.Wikitext != "ping [[User:Alice|Alice]]" {
		t.Errorf("Unexpected derived wikitext %q", comment.Wikitext)
	}
	if strings.Contains(comment.HTML, "script") {
		t.Errorf("Stored html was not sanitized: %q", comment.HTML)
	}
	sent := f.notifier.Notifications()
	if len(sent) != 1 || sent[0].RecipientID != alice.ID || sent[0].Type != models.NotifyMention {
		t.Errorf("Expected a mention of Alice, got %+v", sent)
	}
}

func TestSubmit_Spam(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		checker := spam.CheckerFunc(func(ctx context.Context, c *models.Comment) (bool, error) {
			return strings.Contains(c.Wikitext, "casino"), nil
		})
		f := newFixture(t, service.Dependencies{Spam: checker})

		_, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), &models.SubmitRequest{PageID: mainPage.ID, Wikitext: "cheap casino"})
		if !errors.Is(err, service.ErrSpamRejected) {
			t.Fatalf("Expected ErrSpamRejected, got %v", err)
		}
		if f.repos.Comment.CreateCalls != 0 {
			t.Error("Spam must not be stored")
		}
		if len(f.notifier.Notifications()) != 0 {
			t.Error("Spam must not notify")
		}
	})

	t.Run("checker error", func(t *testing.T) {
		checker := spam.CheckerFunc(func(ctx context.Context, c *models.Comment) (bool, error) {
			return false, errors.New("backend down")
		})
		f := newFixture(t, service.Dependencies{Spam: checker})

		_, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), &models.SubmitRequest{PageID: mainPage.ID, Wikitext: "hello"})
		if err == nil || errors.Is(err, service.ErrSpamRejected) {
			t.Fatalf("Expected internal error, got %v", err)
		}
		if _, ok := service.AsSubmitError(err); ok {
			t.Error("Checker failure is not a validation rejection")
		}
		if f.repos.Comment.CreateCalls != 0 {
			t.Error("Comment must not be stored when the spam check fails")
		}
	})
}

func TestSubmit_NotificationFailureIsIsolated(t *testing.T) {
	f := newFixture(t, service.Dependencies{})
	f.notifier.FailFor[alice.ID] = errors.New("queue full")

	comment, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), &models.SubmitRequest{
		PageID:   bobPage.ID,
		Wikitext: "[[User:Alice]]",
	})
	if err != nil {
		t.Fatalf("Submit must succeed when a notification fails: %v", err)
	}
	if comment.ID == 0 {
		t.Error("Expected stored comment")
	}
	sent := f.notifier.Notifications()
	if len(sent) != 1 || sent[0].RecipientID != bob.ID {
		t.Errorf("Expected Bob to still be notified, got %+v", sent)
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	f := newFixture(t, service.Dependencies{})
	f.repos.Comment.CreateError = errors.New("db down")

	_, err := f.svcs.Comment.Submit(context.Background(), carol.Author(), &models.SubmitRequest{PageID: bobPage.ID, Wikitext: "hello"})
	if err == nil {
		t.Fatal("Expected error")
	}
	if len(f.notifier.Notifications()) != 0 {
		t.Error("No notifications may be sent for an unsaved comment")
	}
}
