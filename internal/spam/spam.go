// Package spam decides whether a comment should be rejected before it is stored.
package spam

import (
	"context"
	"fmt"
	"regexp"

	"github.com/importcjj/sensitive"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/models"
)

// Checker classifies a comment. true means spam.
type Checker interface {
	Check(ctx context.Context, c *models.Comment) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface
type CheckerFunc func(ctx context.Context, c *models.Comment) (bool, error)

// Check calls f
func (f CheckerFunc) Check(ctx context.Context, c *models.Comment) (bool, error) {
	return f(ctx, c)
}

// Chain runs checkers in order; the first positive verdict or error stops the chain
type Chain []Checker

// Check implements Checker
func (ch Chain) Check(ctx context.Context, c *models.Comment) (bool, error) {
	for _, checker := range ch {
		spam, err := checker.Check(ctx, c)
		if err != nil {
			return false, err
		}
		if spam {
			return true, nil
		}
	}
	return false, nil
}

// WordFilter flags comments containing a blocked word or phrase
type WordFilter struct {
	filter *sensitive.Filter
	log    zerolog.Logger
}

// NewWordFilter creates an empty WordFilter
func NewWordFilter(log zerolog.Logger) *WordFilter {
	return &WordFilter{
		filter: sensitive.New(),
		log:    log.With().Str("component", "spam").Logger(),
	}
}

// AddWords blocks additional words
func (f *WordFilter) AddWords(words ...string) {
	f.filter.AddWord(words...)
}

// LoadWordlist loads one word per line from path
func (f *WordFilter) LoadWordlist(path string) error {
	if err := f.filter.LoadWordDict(path); err != nil {
		return fmt.Errorf("failed to load spam wordlist: %w", err)
	}
	return nil
}

// Check implements Checker
func (f *WordFilter) Check(ctx context.Context, c *models.Comment) (bool, error) {
	for _, text := range []string{c.Wikitext, c.HTML} {
		if text == "" {
			continue
		}
		if found, word := f.filter.FindIn(text); found {
			f.log.Info().Int64("page_id", c.PageID).Str("word", word).Msg("Comment matched spam wordlist")
			return true, nil
		}
	}
	return false, nil
}

var externalLink = regexp.MustCompile(`https?://`)

// LinkLimit flags comments with more external links than allowed
type LinkLimit struct {
	Max int
}

// Check implements Checker
func (l LinkLimit) Check(ctx context.Context, c *models.Comment) (bool, error) {
	if l.Max <= 0 {
		return false, nil
	}
	return len(externalLink.FindAllStringIndex(c.Wikitext, -1)) > l.Max, nil
}

// NewFromConfig builds the checker chain used by the service
func NewFromConfig(cfg config.SpamConfig, log zerolog.Logger) (Chain, error) {
	words := NewWordFilter(log)
	if cfg.WordlistPath != "" {
		if err := words.LoadWordlist(cfg.WordlistPath); err != nil {
			return nil, err
		}
	}
	if len(cfg.Words) > 0 {
		words.AddWords(cfg.Words...)
	}

	chain := Chain{words}
	if cfg.MaxExternalLinks > 0 {
		chain = append(chain, LinkLimit{Max: cfg.MaxExternalLinks})
	}
	return chain, nil
}
