package analysts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/internal/sentiment"
	"github.com/dyike/compdata/models"
	"github.com/dyike/compdata/pkg/dataflows"
)

// MaxTweets caps the posts scored per report.
const MaxTweets = 10

// TweetSearcher returns recent posts matching a query.
type TweetSearcher interface {
	SearchRecent(ctx context.Context, query string, maxResults int) ([]dataflows.Tweet, error)
}

// SentimentFetcher scores recent social posts about a company. Unlike the
// other fetchers its failures abort the report.
type SentimentFetcher struct {
	searcher TweetSearcher
	scorer   sentiment.Scorer
	timeout  time.Duration
	logger   logrus.FieldLogger
}

func NewSentimentFetcher(searcher TweetSearcher, scorer sentiment.Scorer, timeout time.Duration, logger logrus.FieldLogger) *SentimentFetcher {
	return &SentimentFetcher{
		searcher: searcher,
		scorer:   scorer,
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch returns the labelled posts and their tally. Credential problems map
// to models.ErrSentimentAuth, everything else to models.ErrSentimentProvider.
func (s *SentimentFetcher) Fetch(ctx context.Context, company string) (models.SentimentResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tweets, err := s.searcher.SearchRecent(callCtx, company, MaxTweets)
	if err != nil {
		logging.FromContext(ctx, s.logger).WithError(err).WithField("company", company).Error("tweet search failed")
		if errors.Is(err, dataflows.ErrUnauthorized) {
			return models.SentimentResult{}, fmt.Errorf("%w: %v", models.ErrSentimentAuth, err)
		}
		return models.SentimentResult{}, fmt.Errorf("%w: %v", models.ErrSentimentProvider, err)
	}

	if len(tweets) > MaxTweets {
		tweets = tweets[:MaxTweets]
	}
	texts := make([]string, 0, len(tweets))
	for _, tweet := range tweets {
		texts = append(texts, tweet.Text)
	}
	return sentiment.Classify(s.scorer, texts), nil
}
