package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/namespace"
	"github.com/page-comments-api/internal/repository"
)

const defaultMaxMentions = 10

// RecipientResolver decides who is notified about a new comment
type RecipientResolver struct {
	users       repository.UserRepository
	maxMentions int
	log         zerolog.Logger
}

// NewRecipientResolver creates a resolver; maxMentions <= 0 uses the default of 10
func NewRecipientResolver(users repository.UserRepository, maxMentions int, log zerolog.Logger) *RecipientResolver {
	if maxMentions <= 0 {
		maxMentions = defaultMaxMentions
	}
	return &RecipientResolver{
		users:       users,
		maxMentions: maxMentions,
		log:         log.With().Str("component", "recipients").Logger(),
	}
}

// Resolve returns the recipients for a comment in priority order: the author of the
// parent, the owner of a user page, then mentioned users in link order. A user is
// listed once, under the first kind that matched. mentions are user page titles.
func (r *RecipientResolver) Resolve(ctx context.Context, submitter models.Author, parent *models.Comment, page *models.Page, mentions []string) []models.RecipientEntry {
	set := models.NewRecipientSet()

	if parent != nil && parent.ActorID != 0 {
		if u := r.lookupID(ctx, parent.ActorID); u != nil && u.ID != submitter.ID {
			set.Add(models.RecipientEntry{UserID: u.ID, UserName: u.Name, Kind: models.NotifyReply})
		}
	}

	if page.InNamespace(models.NamespaceUser) {
		if u := r.lookupName(ctx, namespace.RootName(page)); u != nil && u.ID != submitter.ID {
			set.Add(models.RecipientEntry{UserID: u.ID, UserName: u.Name, Kind: models.NotifyPageOwner})
		}
	}

	added := 0
	for _, name := range mentions {
		if added >= r.maxMentions {
			break
		}
		u := r.lookupName(ctx, name)
		if u == nil || u.ID == submitter.ID {
			continue
		}
		if set.Add(models.RecipientEntry{UserID: u.ID, UserName: u.Name, Kind: models.NotifyMention}) {
			added++
		}
	}

	return set.Entries()
}

func (r *RecipientResolver) lookupID(ctx context.Context, id int64) *models.User {
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		r.log.Warn().Err(err).Int64("user_id", id).Msg("User lookup failed")
		return nil
	}
	return u
}

func (r *RecipientResolver) lookupName(ctx context.Context, name string) *models.User {
	if name == "" {
		return nil
	}
	u, err := r.users.GetByName(ctx, name)
	if err != nil {
		r.log.Warn().Err(err).Str("user", name).Msg("User lookup failed")
		return nil
	}
	return u
}
