package ingestion

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists elements that end a line of text.
const blockSelector = "p, li, div, br, tr, h1, h2, h3, h4, h5, h6, section, article"

// HTMLText returns the visible text of an HTML document, one block element per line.
func HTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template, head").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}
