package dataflows

import (
	"github.com/shopspring/decimal"
)

// WikiPage is a fetched reference page reduced to its visible text.
type WikiPage struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// NewsArticle represents a news article from NewsAPI
type NewsArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Tweet is one post returned by the recent search endpoint.
type Tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// RevenueFigures holds total revenue as reported by two statement sources.
// Either may be nil when the provider omits it.
type RevenueFigures struct {
	// Most recent annual income statement.
	Statement *decimal.Decimal
	// Trailing figure from the provider's financial data summary.
	FinancialData *decimal.Decimal
}
