// Package app builds the shared service handles for one process.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dyike/compdata/config"
	"github.com/dyike/compdata/internal/aggregator"
	"github.com/dyike/compdata/internal/analysts"
	"github.com/dyike/compdata/internal/debug"
	"github.com/dyike/compdata/internal/llm"
	"github.com/dyike/compdata/internal/sentiment"
	"github.com/dyike/compdata/pkg/dataflows"
)

// Engine holds everything a request needs. It is built once at startup and
// shared read-only by all requests.
type Engine struct {
	Config     *config.Config
	Aggregator *aggregator.Aggregator
	BuiltAt    time.Time
}

// BuildEngine validates cfg and wires providers, analysts and the aggregator.
func BuildEngine(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The debugger has to be registered before the extraction chain compiles.
	if err := debug.NewEinoDebugger(cfg, logger).Initialize(ctx); err != nil {
		return nil, err
	}

	chatModel, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	extractor, err := analysts.NewProfileExtractor(ctx, chatModel, cfg.OutboundTimeout, logger)
	if err != nil {
		return nil, err
	}

	prices, revenue, err := marketData(cfg)
	if err != nil {
		return nil, err
	}

	retry := dataflows.DefaultRetryConfig()
	retry.MaxRetries = cfg.RetryMax

	agg := aggregator.New(aggregator.Options{
		Source:     dataflows.NewWikipediaLoader(cfg.SourceBaseURL, cfg.OutboundTimeout),
		Extractor:  extractor,
		Financials: analysts.NewFinancialsFetcher(prices, revenue, cfg.OutboundTimeout, retry, logger),
		News: analysts.NewNewsFetcher(
			dataflows.NewNewsAPIClient(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, cfg.OutboundTimeout),
			cfg.OutboundTimeout, retry, logger,
		),
		Sentiment: analysts.NewSentimentFetcher(
			dataflows.NewTwitterClient(cfg.TwitterBaseURL, TwitterCredentials(cfg), cfg.OutboundTimeout),
			sentiment.NewVaderScorer(), cfg.OutboundTimeout, logger,
		),
		Timeout:       cfg.OutboundTimeout,
		FanOutTimeout: cfg.FanOutBudget(),
		Logger:        logger,
	})

	logger.WithFields(logrus.Fields{
		"llm_provider": cfg.LLMProvider,
		"llm_model":    cfg.LLMModel,
		"market_data":  cfg.MarketDataProvider,
	}).Debug("engine built")

	return &Engine{
		Config:     cfg,
		Aggregator: agg,
		BuiltAt:    time.Now(),
	}, nil
}

// TwitterCredentials collects the configured Twitter keys.
func TwitterCredentials(cfg *config.Config) dataflows.TwitterCredentials {
	return dataflows.TwitterCredentials{
		BearerToken:       cfg.TwitterBearerToken,
		APIKey:            cfg.TwitterAPIKey,
		APISecretKey:      cfg.TwitterAPISecretKey,
		AccessToken:       cfg.TwitterAccessToken,
		AccessTokenSecret: cfg.TwitterAccessTokenSecret,
	}
}

// marketData picks the price source. Revenue always comes from Yahoo.
func marketData(cfg *config.Config) (analysts.PriceSource, analysts.RevenueSource, error) {
	yahoo := dataflows.NewYahooFinanceClient(cfg.YahooBaseURL, cfg.YahooCookieURL, cfg.OutboundTimeout)

	switch cfg.MarketDataProvider {
	case config.MarketDataYahoo:
		return yahoo, yahoo, nil
	case config.MarketDataLongport:
		lp, err := dataflows.NewLongportClient(dataflows.LongportConfig{
			AppKey:      cfg.LongportAppKey,
			AppSecret:   cfg.LongportAppSecret,
			AccessToken: cfg.LongportAccessToken,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init longport: %w", err)
		}
		return lp, yahoo, nil
	default:
		return nil, nil, fmt.Errorf("unsupported market data provider %q", cfg.MarketDataProvider)
	}
}
