package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/go-resty/resty/v2"
)

// Recent search accepts between 10 and 100 results per page.
const (
	minTweetResults = 10
	maxTweetResults = 100
)

// TwitterCredentials holds both ways of authenticating. The bearer token
// wins when set; otherwise requests are signed with OAuth 1.0a user context.
type TwitterCredentials struct {
	BearerToken       string
	APIKey            string
	APISecretKey      string
	AccessToken       string
	AccessTokenSecret string
}

func (c TwitterCredentials) hasUserContext() bool {
	for _, v := range []string{c.APIKey, c.APISecretKey, c.AccessToken, c.AccessTokenSecret} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// TwitterClient calls the v2 recent search endpoint.
type TwitterClient struct {
	client     *resty.Client
	authorized bool
}

type recentSearchResponse struct {
	Data []Tweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// NewTwitterClient creates a new Twitter client
func NewTwitterClient(baseURL string, creds TwitterCredentials, timeout time.Duration) *TwitterClient {
	client := newRestClient(baseURL, timeout)
	authorized := true
	switch {
	case strings.TrimSpace(creds.BearerToken) != "":
		client.SetAuthToken(creds.BearerToken)
	case creds.hasUserContext():
		config := oauth1.NewConfig(creds.APIKey, creds.APISecretKey)
		token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
		client.SetTransport(config.Client(context.Background(), token).Transport)
	default:
		authorized = false
	}
	return &TwitterClient{
		client:     client,
		authorized: authorized,
	}
}

// SearchRecent returns up to maxResults recent posts matching query, in
// provider order. Credential problems are reported as ErrUnauthorized.
func (tc *TwitterClient) SearchRecent(ctx context.Context, query string, maxResults int) ([]Tweet, error) {
	if !tc.authorized {
		return nil, fmt.Errorf("twitter credentials not configured: %w", ErrUnauthorized)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	pageSize := maxResults
	if pageSize < minTweetResults {
		pageSize = minTweetResults
	}
	if pageSize > maxTweetResults {
		pageSize = maxTweetResults
	}

	resp, err := tc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":        query,
			"max_results":  strconv.Itoa(pageSize),
			"tweet.fields": "text,created_at",
		}).
		Get("/2/tweets/search/recent")
	if err != nil {
		return nil, fmt.Errorf("failed to search tweets: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("twitter HTTP %d: %w", resp.StatusCode(), ErrUnauthorized)
	default:
		return nil, &StatusError{Provider: "twitter", Code: resp.StatusCode()}
	}

	var searchResp recentSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse twitter JSON: %w", err)
	}

	tweets := searchResp.Data
	if maxResults > 0 && len(tweets) > maxResults {
		tweets = tweets[:maxResults]
	}
	return tweets, nil
}
