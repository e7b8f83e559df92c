package dataflows

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// WikipediaLoader fetches company pages by name-as-path.
type WikipediaLoader struct {
	client *resty.Client
}

// NewWikipediaLoader creates a loader rooted at baseURL, e.g. https://en.wikipedia.org/wiki/.
func NewWikipediaLoader(baseURL string, timeout time.Duration) *WikipediaLoader {
	return &WikipediaLoader{client: newRestClient(baseURL, timeout)}
}

// PageURL returns the page address for a company name.
func (wl *WikipediaLoader) PageURL(name string) string {
	return wl.client.BaseURL + "/" + url.PathEscape(name)
}

// Load fetches the page for name. A non-200 status yields ErrNotFound;
// transport failures are returned as-is.
func (wl *WikipediaLoader) Load(ctx context.Context, name string) (*WikiPage, error) {
	pageURL := wl.PageURL(name)

	resp, err := wl.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s: HTTP %d: %w", pageURL, resp.StatusCode(), ErrNotFound)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return &WikiPage{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("#firstHeading").Text()),
		Text:  pageText(doc),
	}, nil
}

// pageText concatenates the visible text of the document.
func pageText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, template").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	root.Contents().Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}
