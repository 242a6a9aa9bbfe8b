// Package element derives the on-page SEO elements of a crawled page from its
// raw HTML: title, meta description, robots directive, canonical URL, headings
// and a visible-text word count.
package element

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements holds the extracted fields. Absent elements stay nil so the row
// model can distinguish missing from empty.
type Elements struct {
	Title       *string
	Description *string
	MetaRobots  *string
	Canonical   *string
	H1          *string
	H2          []string
	WordCount   int
}

// Extract parses html and pulls out the page elements. Malformed markup is
// tolerated; goquery parses what it can and missing elements stay nil.
func Extract(html string) (*Elements, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	out := &Elements{}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		out.Title = &title
	}
	if desc, ok := metaContent(doc, "description"); ok {
		out.Description = &desc
	}
	if robots, ok := metaContent(doc, "robots"); ok {
		out.MetaRobots = &robots
	}
	if canonical, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		canonical = strings.TrimSpace(canonical)
		if canonical != "" {
			out.Canonical = &canonical
		}
	}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		out.H1 = &h1
	}
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out.H2 = append(out.H2, text)
		}
	})

	out.WordCount = countWords(doc)

	return out, nil
}

// countWords counts whitespace-separated tokens of the visible body text,
// ignoring boilerplate and non-content elements.
func countWords(doc *goquery.Document) int {
	body := doc.Find("body").Clone()
	if body.Length() == 0 {
		return 0
	}
	body.Find("script, style, noscript, nav, header, footer, aside").Remove()
	return len(strings.Fields(body.Text()))
}

func metaContent(doc *goquery.Document, name string) (string, bool) {
	content, ok := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	if !ok {
		return "", false
	}
	content = strings.TrimSpace(content)
	return content, content != ""
}
