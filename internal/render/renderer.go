// Package render turns comment wikitext into HTML and reports the internal links it contains.
package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/namespace"
)

const (
	defaultArticlePath = "/wiki/"
	defaultMaxBytes    = 2 * 1024 * 1024
)

var (
	ErrTooLarge    = errors.New("wikitext exceeds maximum size")
	ErrInvalidUTF8 = errors.New("wikitext is not valid UTF-8")
)

// Link is an internal link found in rendered wikitext
type Link struct {
	Namespace int    `json:"ns"`
	Title     string `json:"title"`
}

// Result is the output of rendering wikitext
type Result struct {
	HTML  string
	Links []Link // internal links in document order, first occurrence only
}

// UserLinks returns the titles of links into the user namespace, in order
func (r *Result) UserLinks() []string {
	var out []string
	for _, l := range r.Links {
		if l.Namespace == models.NamespaceUser {
			out = append(out, l.Title)
		}
	}
	return out
}

// Renderer converts between comment markup formats
type Renderer interface {
	Render(ctx context.Context, wikitext string, page *models.Page) (*Result, error)
	HTMLToWikitext(ctx context.Context, html string, page *models.Page) (string, error)
	Sanitize(html string) string
}

var (
	// [[Target]] / [[Target|label]] or [http://example.org label]
	linkPattern   = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]*))?\]\]|\[(https?://[^\s\]]+)(?:\s+([^\]]*))?\]`)
	boldPattern   = regexp.MustCompile(`'''(.+?)'''`)
	italicPattern = regexp.MustCompile(`''(.+?)''`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
	textEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// WikitextRenderer is the built-in renderer for the small wikitext subset comments use:
// paragraphs, bold, italic, internal and external links.
type WikitextRenderer struct {
	ns          *namespace.Registry
	policy      *bluemonday.Policy
	articlePath string
	maxBytes    int
}

// NewWikitextRenderer creates a renderer resolving link namespaces through ns
func NewWikitextRenderer(ns *namespace.Registry) *WikitextRenderer {
	return &WikitextRenderer{
		ns:          ns,
		policy:      bluemonday.UGCPolicy(),
		articlePath: defaultArticlePath,
		maxBytes:    defaultMaxBytes,
	}
}

// Render produces sanitized HTML and the internal links of wikitext
func (r *WikitextRenderer) Render(ctx context.Context, wikitext string, page *models.Page) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(wikitext) > r.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, len(wikitext))
	}
	if !utf8.ValidString(wikitext) {
		return nil, ErrInvalidUTF8
	}

	res := &Result{}
	seen := make(map[Link]struct{})

	var b strings.Builder
	text := strings.ReplaceAll(wikitext, "\r\n", "\n")
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(r.renderInline(para, page, res, seen))
		b.WriteString("</p>")
	}

	res.HTML = r.policy.Sanitize(b.String())
	return res, nil
}

func (r *WikitextRenderer) renderInline(text string, page *models.Page, res *Result, seen map[Link]struct{}) string {
	var b strings.Builder
	last := 0
	for _, m := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(formatText(text[last:m[0]]))
		last = m[1]

		if m[2] >= 0 {
			target := text[m[2]:m[3]]
			label := ""
			if m[4] >= 0 {
				label = text[m[4]:m[5]]
			}
			link, display := r.resolveLink(target, label, page)
			if _, dup := seen[link]; !dup && link.Title != "" {
				seen[link] = struct{}{}
				res.Links = append(res.Links, link)
			}
			fmt.Fprintf(&b, `<a href="%s" title="%s">%s</a>`,
				textEscaper.Replace(r.linkURL(link)),
				textEscaper.Replace(r.ns.PrefixedText(&models.Page{Namespace: link.Namespace, Title: link.Title})),
				formatText(display))
			continue
		}

		href := text[m[6]:m[7]]
		label := href
		if m[8] >= 0 && strings.TrimSpace(text[m[8]:m[9]]) != "" {
			label = text[m[8]:m[9]]
		}
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, textEscaper.Replace(href), formatText(label))
	}
	b.WriteString(formatText(text[last:]))
	return b.String()
}

// resolveLink parses a link target; a bare "#fragment" points at the current page
func (r *WikitextRenderer) resolveLink(target, label string, page *models.Page) (Link, string) {
	target = strings.TrimSpace(target)
	display := target
	if label != "" {
		display = label
	}
	target = strings.TrimPrefix(target, ":")
	title, _, _ := strings.Cut(target, "#")
	if title == "" && page != nil {
		return Link{Namespace: page.Namespace, Title: page.Title}, display
	}
	ns, t := r.ns.Parse(title)
	return Link{Namespace: ns, Title: ucfirst(t)}, display
}

func (r *WikitextRenderer) linkURL(l Link) string {
	full := r.ns.PrefixedText(&models.Page{Namespace: l.Namespace, Title: l.Title})
	return r.articlePath + url.PathEscape(strings.ReplaceAll(full, " ", "_"))
}

// Sanitize cleans user-supplied HTML
func (r *WikitextRenderer) Sanitize(html string) string {
	return r.policy.Sanitize(html)
}

func formatText(s string) string {
	s = textEscaper.Replace(s)
	s = boldPattern.ReplaceAllString(s, "<b>$1</b>")
	s = italicPattern.ReplaceAllString(s, "<i>$1</i>")
	return s
}

func ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
