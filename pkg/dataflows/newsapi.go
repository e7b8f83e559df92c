package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewsAPIClient handles NewsAPI requests
type NewsAPIClient struct {
	apiKey string
	client *resty.Client
}

// NewsAPIResponse represents the response from NewsAPI
type NewsAPIResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Articles     []NewsArticle `json:"articles"`
	Code         string        `json:"code,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// NewsAPIParams represents parameters for news search
type NewsAPIParams struct {
	Query    string
	Language string
	SortBy   string // relevancy, popularity, publishedAt
	PageSize int
}

// NewNewsAPIClient creates a new NewsAPI client
func NewNewsAPIClient(baseURL, apiKey string, timeout time.Duration) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey: apiKey,
		client: newRestClient(baseURL, timeout),
	}
}

// GetEverything searches for articles using the /everything endpoint
func (na *NewsAPIClient) GetEverything(ctx context.Context, params NewsAPIParams) (*NewsAPIResponse, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	query := map[string]string{
		"q":      params.Query,
		"apiKey": na.apiKey,
	}
	if params.Language != "" {
		query["language"] = params.Language
	}
	if params.SortBy != "" {
		query["sortBy"] = params.SortBy
	}
	if params.PageSize > 0 {
		query["pageSize"] = strconv.Itoa(params.PageSize)
	}

	resp, err := na.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get("/v2/everything")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("newsapi: %w", ErrUnauthorized)
	default:
		return nil, &StatusError{Provider: "newsapi", Code: resp.StatusCode()}
	}

	var newsResponse NewsAPIResponse
	if err := json.Unmarshal(resp.Body(), &newsResponse); err != nil {
		return nil, fmt.Errorf("failed to parse NewsAPI JSON: %w", err)
	}
	if newsResponse.Status != "" && newsResponse.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", newsResponse.Code, newsResponse.Message)
	}

	return &newsResponse, nil
}
