package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/compdata/config"
	"github.com/dyike/compdata/internal/aggregator"
	"github.com/dyike/compdata/internal/analysts"
	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/models"
	"github.com/dyike/compdata/pkg/dataflows"
)

// stalledMarket never answers; every call ends with its context.
type stalledMarket struct{}

func (stalledMarket) LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	<-ctx.Done()
	return decimal.Zero, ctx.Err()
}

func (stalledMarket) Revenue(ctx context.Context, symbol string) (*dataflows.RevenueFigures, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type staticSource struct{}

func (staticSource) Load(ctx context.Context, name string) (*dataflows.WikiPage, error) {
	return &dataflows.WikiPage{Text: "Tesla, Inc. is an American electric vehicle company based in Austin."}, nil
}

type staticExtractor struct{}

func (staticExtractor) Extract(ctx context.Context, snippet string) (*models.CompanyProfile, error) {
	name := "Tesla, Inc."
	return &models.CompanyProfile{CompanyName: &name}, nil
}

type emptyNews struct{}

func (emptyNews) Fetch(ctx context.Context, company string) []models.NewsItem {
	return []models.NewsItem{}
}

type quietSentiment struct{}

func (quietSentiment) Fetch(ctx context.Context, company string) (models.SentimentResult, error) {
	return models.SentimentResult{Tweets: []models.TweetSentimentRecord{}}, nil
}

func TestServerDeliversReportWhenMarketDataStalls(t *testing.T) {
	cfg := &config.Config{
		ServerHost:      "127.0.0.1",
		ServerPort:      8000,
		OutboundTimeout: 300 * time.Millisecond,
		RetryMax:        2,
	}
	logger := logging.Discard()
	retry := &dataflows.RetryConfig{MaxRetries: cfg.RetryMax, Multiplier: 1}

	agg := aggregator.New(aggregator.Options{
		Source:        staticSource{},
		Extractor:     staticExtractor{},
		Financials:    analysts.NewFinancialsFetcher(stalledMarket{}, stalledMarket{}, cfg.OutboundTimeout, retry, logger),
		News:          emptyNews{},
		Sentiment:     quietSentiment{},
		Timeout:       cfg.OutboundTimeout,
		FanOutTimeout: cfg.FanOutBudget(),
		Logger:        logger,
	})

	srv := NewServer(cfg, agg, logger)
	if srv.WriteTimeout <= cfg.RequestBudget() {
		t.Fatalf("write timeout %s does not cover request budget %s", srv.WriteTimeout, cfg.RequestBudget())
	}

	ts := httptest.NewUnstartedServer(srv.Handler)
	ts.Config.WriteTimeout = srv.WriteTimeout
	ts.Start()
	defer ts.Close()

	start := time.Now()
	resp, err := http.Post(ts.URL+"/get_compdata", "application/json", strings.NewReader(`{"company_name":"Tesla, Inc."}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var report models.AggregatedReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if report.Financials.StockPrice != models.Placeholder || report.Financials.Revenue != models.Placeholder {
		t.Fatalf("expected placeholder financials, got %+v", report.Financials)
	}

	// three attempts each for price and revenue, run side by side
	if limit := 3*cfg.OutboundTimeout + time.Second; elapsed > limit {
		t.Fatalf("report took %s, expected under %s", elapsed, limit)
	}
}
