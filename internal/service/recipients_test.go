package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/mocks"
	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/service"
)

func TestRecipientResolver_Resolve(t *testing.T) {
	users := mocks.NewMockUserRepository(alice, bob, carol)
	resolver := service.NewRecipientResolver(users, 0, zerolog.Nop())

	aliceRoot := &models.Comment{ID: 1, PageID: bobPage.ID, ActorID: alice.ID}
	anonRoot := &models.Comment{ID: 2, PageID: bobPage.ID, Username: "192.0.2.1"}

	tests := []struct {
		name      string
		submitter models.Author
		parent    *models.Comment
		page      *models.Page
		mentions  []string
		want      []models.RecipientEntry
	}{
		{
			name:      "reply owner and mention deduplicated",
			submitter: carol.Author(),
			parent:    aliceRoot,
			page:      bobPage,
			mentions:  []string{"Alice", "Bob"},
			want: []models.RecipientEntry{
				{UserID: alice.ID, UserName: "Alice", Kind: models.NotifyReply},
				{UserID: bob.ID, UserName: "Bob", Kind: models.NotifyPageOwner},
			},
		},
		{
			name:      "owner of a subpage",
			submitter: carol.Author(),
			page:      bobSubpage,
			want: []models.RecipientEntry{
				{UserID: bob.ID, UserName: "Bob", Kind: models.NotifyPageOwner},
			},
		},
		{
			name:      "anonymous parent and main namespace",
			submitter: models.Author{Name: "198.51.100.4"},
			parent:    anonRoot,
			page:      mainPage,
			mentions:  []string{"Nobody", "Carol", "Carol"},
			want: []models.RecipientEntry{
				{UserID: carol.ID, UserName: "Carol", Kind: models.NotifyMention},
			},
		},
		{
			name:      "submitter excluded everywhere",
			submitter: alice.Author(),
			parent:    aliceRoot,
			page:      mainPage,
			mentions:  []string{"Alice"},
			want:      []models.RecipientEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(context.Background(), tt.submitter, tt.parent, tt.page, tt.mentions)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d recipients, got %+v", len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("recipient %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestRecipientResolver_LookupErrorsAreSkipped(t *testing.T) {
	users := mocks.NewMockUserRepository(alice, bob)
	users.LookupError = errors.New("replica lag")
	resolver := service.NewRecipientResolver(users, 10, zerolog.Nop())

	got := resolver.Resolve(context.Background(), carol.Author(), &models.Comment{ActorID: alice.ID}, bobPage, []string{"Alice"})
	if len(got) != 0 {
		t.Errorf("Expected no recipients, got %+v", got)
	}
}
