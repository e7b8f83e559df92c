package analysts

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/models"
	"github.com/dyike/compdata/pkg/dataflows"
)

// PriceSource reports the latest daily close for a symbol.
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// RevenueSource reports total revenue figures for a symbol.
type RevenueSource interface {
	Revenue(ctx context.Context, symbol string) (*dataflows.RevenueFigures, error)
}

var errNoRevenue = errors.New("no revenue reported")

// FinancialsFetcher builds the financial snapshot. It never fails: every
// field it cannot fill is rendered as models.Placeholder.
type FinancialsFetcher struct {
	prices  PriceSource
	revenue RevenueSource
	timeout time.Duration
	retry   *dataflows.RetryConfig
	logger  logrus.FieldLogger
}

func NewFinancialsFetcher(prices PriceSource, revenue RevenueSource, timeout time.Duration, retry *dataflows.RetryConfig, logger logrus.FieldLogger) *FinancialsFetcher {
	return &FinancialsFetcher{
		prices:  prices,
		revenue: revenue,
		timeout: timeout,
		retry:   retry,
		logger:  logger,
	}
}

// Fetch returns price and revenue for symbol, querying both concurrently.
// An empty symbol means the company has no known listing and no provider
// is called.
func (f *FinancialsFetcher) Fetch(ctx context.Context, symbol string) models.FinancialSnapshot {
	if symbol == "" {
		return models.EmptyFinancials()
	}

	snapshot := models.FinancialSnapshot{StockTicker: symbol}
	var g errgroup.Group
	g.Go(func() error {
		snapshot.StockPrice = f.stockPrice(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		snapshot.Revenue = f.totalRevenue(ctx, symbol)
		return nil
	})
	_ = g.Wait()
	return snapshot
}

func (f *FinancialsFetcher) stockPrice(ctx context.Context, symbol string) string {
	var price decimal.Decimal
	err := withTimeoutRetry(ctx, f.timeout, f.retry, func(ctx context.Context) error {
		p, err := f.prices.LatestClose(ctx, symbol)
		if err != nil {
			return err
		}
		price = p
		return nil
	})
	if err != nil {
		logging.FromContext(ctx, f.logger).WithError(err).WithField("symbol", symbol).Warn("stock price unavailable")
		return models.Placeholder
	}
	return FormatPrice(price)
}

func (f *FinancialsFetcher) totalRevenue(ctx context.Context, symbol string) string {
	var revenue decimal.Decimal
	err := withTimeoutRetry(ctx, f.timeout, f.retry, func(ctx context.Context) error {
		figures, err := f.revenue.Revenue(ctx, symbol)
		if err != nil {
			return err
		}
		switch {
		case figures.Statement != nil:
			revenue = *figures.Statement
		case figures.FinancialData != nil:
			revenue = *figures.FinancialData
		default:
			return errNoRevenue
		}
		return nil
	})
	if err != nil {
		logging.FromContext(ctx, f.logger).WithError(err).WithField("symbol", symbol).Warn("revenue unavailable")
		return models.Placeholder
	}
	return FormatRevenue(revenue)
}

// FormatPrice renders a price rounded to cents, e.g. "$123.45".
func FormatPrice(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}

// FormatRevenue renders whole currency units with thousands separators,
// e.g. "$96,773,000,000".
func FormatRevenue(revenue decimal.Decimal) string {
	return "$" + humanize.Comma(revenue.Round(0).IntPart())
}

// withTimeoutRetry runs fn under retry, giving every attempt its own timeout.
func withTimeoutRetry(ctx context.Context, timeout time.Duration, retry *dataflows.RetryConfig, fn func(ctx context.Context) error) error {
	return dataflows.WithRetry(ctx, retry, func() error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(callCtx)
	})
}
