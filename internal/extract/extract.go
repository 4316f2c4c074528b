// Package extract turns HTML into the text that should be counted.
// It is used when only the readable part of a page matters, not its markup.
package extract

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Options controls what part of a page is extracted and how it is rendered.
type Options struct {
	Selector   string   // CSS selector; overrides IncludeAll and readability
	IncludeAll bool     // use the whole document instead of the readability article
	Markdown   bool     // render as Markdown instead of plain text
	BaseURL    *url.URL // page URL for readability link resolution (may be nil)
}

// Text extracts the countable text from an HTML document.
//
// By default go-readability picks the main article. With a Selector only matching elements
// are kept; with IncludeAll the whole body is used.
func Text(content io.Reader, opts Options) (string, error) {
	var (
		html string
		err  error
	)
	switch {
	case opts.Selector != "":
		html, err = selectHTML(content, opts.Selector)
	case opts.IncludeAll:
		html, err = allHTML(content)
	default:
		html, err = articleHTML(content, opts.BaseURL)
	}
	if err != nil {
		return "", err
	}

	if opts.Markdown {
		return toMarkdown(html)
	}
	return toText(html)
}

// articleHTML returns the main article found by go-readability
func articleHTML(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}

	slog.Debug("Readable article extracted", "title", article.Title, "length", len(article.Content))
	return article.Content, nil
}

// selectHTML returns the outer HTML of every element matching selector.
func selectHTML(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	var parts []string
	selection.Each(func(_ int, s *goquery.Selection) {
		if html, err := goquery.OuterHtml(s); err == nil {
			parts = append(parts, html)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	slog.Debug("Selector matched", "selector", selector, "elements", len(parts))
	return strings.Join(parts, "\n"), nil
}

// allHTML reads the whole document.
// Readability and goquery both need a complete DOM, so this is not streamed.
func allHTML(content io.Reader) (string, error) {
	b, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML content: %w", err)
	}
	return string(b), nil
}

// toText keeps only the text nodes, one block per line.
func toText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// toMarkdown converts HTML to Markdown, collapsing runs of blank lines.
func toMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)

	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	cleaned := strings.TrimSpace(markdown)
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}
	return cleaned, nil
}
