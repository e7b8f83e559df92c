package analysts

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/models"
	"github.com/dyike/compdata/pkg/dataflows"
)

// MaxNewsItems caps the headlines kept per report.
const MaxNewsItems = 5

// NewsSearcher runs a full-text article search.
type NewsSearcher interface {
	GetEverything(ctx context.Context, params dataflows.NewsAPIParams) (*dataflows.NewsAPIResponse, error)
}

// NewsFetcher collects recent headlines. Failures yield an empty list.
type NewsFetcher struct {
	searcher NewsSearcher
	timeout  time.Duration
	retry    *dataflows.RetryConfig
	logger   logrus.FieldLogger
}

func NewNewsFetcher(searcher NewsSearcher, timeout time.Duration, retry *dataflows.RetryConfig, logger logrus.FieldLogger) *NewsFetcher {
	return &NewsFetcher{
		searcher: searcher,
		timeout:  timeout,
		retry:    retry,
		logger:   logger,
	}
}

// Fetch returns at most MaxNewsItems articles in provider order. The result
// is never nil.
func (n *NewsFetcher) Fetch(ctx context.Context, company string) []models.NewsItem {
	var articles []dataflows.NewsArticle
	err := withTimeoutRetry(ctx, n.timeout, n.retry, func(ctx context.Context) error {
		resp, err := n.searcher.GetEverything(ctx, dataflows.NewsAPIParams{
			Query:    company,
			PageSize: MaxNewsItems,
		})
		if err != nil {
			return err
		}
		articles = resp.Articles
		return nil
	})
	if err != nil {
		logging.FromContext(ctx, n.logger).WithError(err).WithField("company", company).Warn("news unavailable")
		return []models.NewsItem{}
	}

	if len(articles) > MaxNewsItems {
		articles = articles[:MaxNewsItems]
	}
	items := make([]models.NewsItem, 0, len(articles))
	for _, article := range articles {
		items = append(items, models.NewsItem{
			Headline: article.Title,
			Source:   article.Source.Name,
			Date:     article.PublishedAt,
		})
	}
	return items
}
