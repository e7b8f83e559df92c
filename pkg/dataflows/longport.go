package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
)

type LongportConfig struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

// LongportClient is an alternative daily price source.
type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportClient(conf LongportConfig) (*LongportClient, error) {
	if conf.AppKey == "" || conf.AppSecret == "" || conf.AccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	cfg, err := lpconfig.New(lpconfig.WithConfigKey(conf.AppKey, conf.AppSecret, conf.AccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(cfg)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteContext}, nil
}

// LongportSymbol maps a bare US ticker to Longport's market-suffixed form.
func LongportSymbol(symbol string) string {
	symbol = NormalizeSymbol(symbol)
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

// LatestClose returns the close of the most recent daily candlestick.
func (lpc *LongportClient) LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if lpc.quoteCtx == nil {
		return decimal.Zero, errors.New("quote context is nil")
	}

	lpSymbol := LongportSymbol(symbol)
	sticks, err := lpc.quoteCtx.Candlesticks(ctx, lpSymbol, quote.PeriodDay, 1, quote.AdjustTypeNo)
	if err != nil {
		return decimal.Zero, fmt.Errorf("longport candlesticks for %s: %w", lpSymbol, err)
	}
	if len(sticks) == 0 || sticks[len(sticks)-1].Close == nil {
		return decimal.Zero, fmt.Errorf("no price history for %s", lpSymbol)
	}
	return *sticks[len(sticks)-1].Close, nil
}
