package render

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/page-comments-api/internal/models"
)

// HTMLToWikitext derives wikitext from editor HTML so mentions written as
// links can be recovered. Unknown elements contribute their text only.
func (r *WikitextRenderer) HTMLToWikitext(ctx context.Context, html string, page *models.Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var b strings.Builder
	r.writeWikitext(&b, doc.Find("body").Contents(), page)

	out := blankLines.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out), nil
}

func (r *WikitextRenderer) writeWikitext(b *strings.Builder, sel *goquery.Selection, page *models.Page) {
	sel.Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			b.WriteString(s.Text())
		case "b", "strong":
			b.WriteString("'''")
			r.writeWikitext(b, s.Contents(), page)
			b.WriteString("'''")
		case "i", "em":
			b.WriteString("''")
			r.writeWikitext(b, s.Contents(), page)
			b.WriteString("''")
		case "br":
			b.WriteString("\n")
		case "p", "div", "li":
			r.writeWikitext(b, s.Contents(), page)
			b.WriteString("\n\n")
		case "a":
			b.WriteString(r.anchorWikitext(s, page))
		case "script", "style", "#comment":
		default:
			r.writeWikitext(b, s.Contents(), page)
		}
	})
}

func (r *WikitextRenderer) anchorWikitext(s *goquery.Selection, page *models.Page) string {
	label := s.Text()
	href, ok := s.Attr("href")
	if !ok || href == "" {
		return label
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		if label == "" || label == href {
			return "[" + href + "]"
		}
		return "[" + href + " " + label + "]"
	}

	var target string
	switch {
	case strings.HasPrefix(href, r.articlePath):
		target = strings.TrimPrefix(href, r.articlePath)
	case strings.HasPrefix(href, "./"):
		target = strings.TrimPrefix(href, "./")
	case strings.HasPrefix(href, "#") && page != nil:
		target = r.ns.PrefixedText(page) + href
	default:
		return label
	}
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	target = strings.ReplaceAll(target, "_", " ")

	if label == "" || label == target {
		return "[[" + target + "]]"
	}
	return "[[" + target + "|" + label + "]]"
}
