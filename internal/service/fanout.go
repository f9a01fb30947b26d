package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/namespace"
	"github.com/page-comments-api/internal/notify"
)

// Dispatcher sends one notification per recipient
type Dispatcher struct {
	notifier notify.Notifier
	ns       *namespace.Registry
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(notifier notify.Notifier, ns *namespace.Registry, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		ns:       ns,
		log:      log.With().Str("component", "fanout").Logger(),
	}
}

// Dispatch notifies every recipient and returns how many deliveries succeeded.
// A failed delivery is logged and does not affect the others.
func (d *Dispatcher) Dispatch(ctx context.Context, comment *models.Comment, page *models.Page, agent models.Author, recipients []models.RecipientEntry) int {
	title := d.ns.PrefixedText(page)
	sent := 0
	for _, r := range recipients {
		n := models.Notification{
			Type:        r.Kind,
			RecipientID: r.UserID,
			PageID:      page.ID,
			PageTitle:   title,
			Agent:       agent,
			CommentID:   comment.ID,
			Wikitext:    comment.Wikitext,
		}
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.log.Error().Err(err).
				Int64("comment_id", comment.ID).
				Int64("recipient", r.UserID).
				Str("type", string(r.Kind)).
				Msg("Notification dispatch failed")
			continue
		}
		sent++
	}
	return sent
}
