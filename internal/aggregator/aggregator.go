// Package aggregator assembles the company report from all sources.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/internal/textclean"
	"github.com/dyike/compdata/internal/ticker"
	"github.com/dyike/compdata/models"
	"github.com/dyike/compdata/pkg/dataflows"
)

// Length of the snippet head written to the debug log.
const snippetLogLimit = 500

// SourceLoader fetches the reference page for a company name.
type SourceLoader interface {
	Load(ctx context.Context, name string) (*dataflows.WikiPage, error)
}

type ProfileExtractor interface {
	Extract(ctx context.Context, snippet string) (*models.CompanyProfile, error)
}

type FinancialsFetcher interface {
	Fetch(ctx context.Context, symbol string) models.FinancialSnapshot
}

type NewsFetcher interface {
	Fetch(ctx context.Context, company string) []models.NewsItem
}

type SentimentFetcher interface {
	Fetch(ctx context.Context, company string) (models.SentimentResult, error)
}

// Aggregator is shared by all requests; it holds no per-request state.
type Aggregator struct {
	source     SourceLoader
	extractor  ProfileExtractor
	financials FinancialsFetcher
	news       NewsFetcher
	sentiment  SentimentFetcher
	timeout    time.Duration
	fanOut     time.Duration
	logger     logrus.FieldLogger
}

// Options wires the components. Timeout bounds the source page fetch and
// FanOutTimeout the concurrent financials, news and sentiment step. A zero
// FanOutTimeout leaves that step bounded only by the request context.
type Options struct {
	Source        SourceLoader
	Extractor     ProfileExtractor
	Financials    FinancialsFetcher
	News          NewsFetcher
	Sentiment     SentimentFetcher
	Timeout       time.Duration
	FanOutTimeout time.Duration
	Logger        logrus.FieldLogger
}

func New(opts Options) *Aggregator {
	return &Aggregator{
		source:     opts.Source,
		extractor:  opts.Extractor,
		financials: opts.Financials,
		news:       opts.News,
		sentiment:  opts.Sentiment,
		timeout:    opts.Timeout,
		fanOut:     opts.FanOutTimeout,
		logger:     opts.Logger,
	}
}

// Report builds the aggregated report for company. Only the source page,
// the profile extraction and the sentiment fetch can fail the request;
// financials and news degrade to placeholders.
func (a *Aggregator) Report(ctx context.Context, company string) (*models.AggregatedReport, error) {
	logger := logging.FromContext(ctx, a.logger).WithField("company", company)

	text, err := a.sourceText(ctx, company)
	if err != nil {
		logger.WithError(err).Error("source page unusable")
		return nil, err
	}

	snippet := textclean.Snippet(text)
	logger.WithField("snippet", head(snippet, snippetLogLimit)).Debug("extracted page text")

	profile, err := a.extractor.Extract(ctx, snippet)
	if err != nil {
		logger.WithError(err).Error("profile extraction failed")
		return nil, err
	}

	var (
		financials models.FinancialSnapshot
		news       []models.NewsItem
		tweets     models.SentimentResult
	)
	symbol, _ := ticker.Resolve(company)

	fanCtx, cancel := a.fanOutContext(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(fanCtx)
	g.Go(func() error {
		financials = a.financials.Fetch(gctx, symbol)
		return nil
	})
	g.Go(func() error {
		news = a.news.Fetch(gctx, company)
		return nil
	})
	g.Go(func() error {
		var err error
		tweets, err = a.sentiment.Fetch(gctx, company)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("sentiment fetch failed")
		return nil, err
	}

	report := Merge(company, profile, news, tweets, financials)
	logger.WithFields(logrus.Fields{
		"news":   len(report.RecentNews),
		"tweets": len(report.TwitterSentiment.Tweets),
		"symbol": symbol,
	}).Info("report assembled")
	logger.WithField("report", fmt.Sprintf("%+v", *report)).Debug("final response")

	return report, nil
}

func (a *Aggregator) fanOutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.fanOut <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.fanOut)
}

// sourceText loads and normalizes the reference page.
func (a *Aggregator) sourceText(ctx context.Context, company string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	page, err := a.source.Load(callCtx, company)
	if err != nil {
		if errors.Is(err, dataflows.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", models.ErrSourceNotFound, err)
		}
		return "", fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	text := textclean.Normalize(page.Text)
	if text == "" {
		return "", models.ErrEmptyContent
	}
	return text, nil
}

// Merge combines the component outputs. Missing profile fields become
// models.Placeholder and the company name falls back to the query.
func Merge(query string, profile *models.CompanyProfile, news []models.NewsItem, tweets models.SentimentResult, financials models.FinancialSnapshot) *models.AggregatedReport {
	if profile == nil {
		profile = &models.CompanyProfile{}
	}
	if news == nil {
		news = []models.NewsItem{}
	}
	if tweets.Tweets == nil {
		tweets.Tweets = []models.TweetSentimentRecord{}
	}

	return &models.AggregatedReport{
		CompanyName: valueOr(profile.CompanyName, query),
		Overview: models.Overview{
			Headquarters: valueOr(profile.Headquarters, models.Placeholder),
			Website:      valueOr(profile.Website, models.Placeholder),
			Industry:     valueOr(profile.Industry, models.Placeholder),
			CEO:          valueOr(profile.CEO, models.Placeholder),
			Founded:      valueOr(profile.Founded, models.Placeholder),
			Employees:    valueOr(profile.EmployeeCount, models.Placeholder),
			Competitors:  valueOr(profile.Competitors, models.Placeholder),
		},
		RecentNews:       news,
		TwitterSentiment: tweets,
		Financials:       financials,
	}
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
