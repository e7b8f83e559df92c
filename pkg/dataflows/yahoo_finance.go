package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Window searched for the latest daily bar; covers weekends and holidays.
const closeLookback = 7 * 24 * time.Hour

// YahooFinanceClient handles Yahoo Finance data operations. quoteSummary
// needs a session cookie plus the crumb issued for it; both are fetched
// lazily and shared by all callers.
type YahooFinanceClient struct {
	client    *resty.Client
	charts    chart.Client
	cookieURL string

	mu     sync.Mutex
	crumb  string
	crumbs singleflight.Group
}

type yahooValue struct {
	Raw *decimal.Decimal `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistory *struct {
				IncomeStatementHistory []struct {
					TotalRevenue *yahooValue `json:"totalRevenue"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			FinancialData *struct {
				TotalRevenue *yahooValue `json:"totalRevenue"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// NewYahooFinanceClient creates a new Yahoo Finance client. baseURL serves
// the chart, crumb and quoteSummary endpoints; cookieURL hands out the
// session cookie the crumb is bound to.
func NewYahooFinanceClient(baseURL, cookieURL string, timeout time.Duration) *YahooFinanceClient {
	client := newRestClient(baseURL, timeout)
	return &YahooFinanceClient{
		client:    client,
		charts:    chart.Client{B: chartBackend(baseURL, timeout, client.GetClient().Jar)},
		cookieURL: cookieURL,
	}
}

// chartBackend points finance-go at baseURL with a bounded HTTP client. The
// package default client waits up to 80 seconds.
func chartBackend(baseURL string, timeout time.Duration, jar http.CookieJar) *finance.BackendConfiguration {
	return &finance.BackendConfiguration{
		Type:       finance.YFinBackend,
		URL:        strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout, Jar: jar},
	}
}

// LatestClose returns the closing price of the most recent trading day.
func (yf *YahooFinanceClient) LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return decimal.Zero, err
	}
	symbol = NormalizeSymbol(symbol)

	end := time.Now()
	start := end.Add(-closeLookback)
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	params.Context = &ctx
	iter := yf.charts.Get(params)

	var (
		last  decimal.Decimal
		found bool
	)
	for iter.Next() {
		bar := iter.Bar()
		if bar == nil || bar.Close.IsZero() {
			continue
		}
		last = bar.Close
		found = true
	}
	if err := iter.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get chart for %s: %w", symbol, err)
	}
	if !found {
		return decimal.Zero, fmt.Errorf("no price history for %s", symbol)
	}
	return last, nil
}

// sessionCrumb returns the cached crumb, running the cookie handshake once
// for all concurrent callers when none is cached.
func (yf *YahooFinanceClient) sessionCrumb(ctx context.Context) (string, error) {
	yf.mu.Lock()
	crumb := yf.crumb
	yf.mu.Unlock()
	if crumb != "" {
		return crumb, nil
	}

	v, err, _ := yf.crumbs.Do("crumb", func() (interface{}, error) {
		return yf.fetchCrumb(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (yf *YahooFinanceClient) fetchCrumb(ctx context.Context) (string, error) {
	// The cookie host answers with an error status; only Set-Cookie matters.
	if _, err := yf.client.R().SetContext(ctx).Get(yf.cookieURL); err != nil {
		return "", fmt.Errorf("failed to obtain yahoo session cookie: %w", err)
	}

	resp, err := yf.client.R().
		SetContext(ctx).
		Get("/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("failed to get yahoo crumb: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("yahoo crumb HTTP %d: %w", resp.StatusCode(), ErrUnauthorized)
	default:
		return "", &StatusError{Provider: "yahoo", Code: resp.StatusCode()}
	}

	crumb := strings.TrimSpace(resp.String())
	if crumb == "" {
		return "", fmt.Errorf("yahoo returned an empty crumb: %w", ErrUnauthorized)
	}

	yf.mu.Lock()
	yf.crumb = crumb
	yf.mu.Unlock()
	return crumb, nil
}

// dropCrumb forgets crumb unless another caller already replaced it.
func (yf *YahooFinanceClient) dropCrumb(crumb string) {
	yf.mu.Lock()
	if yf.crumb == crumb {
		yf.crumb = ""
	}
	yf.mu.Unlock()
}

// Revenue returns total revenue from the annual income statement history and
// from the financial data summary, whichever the provider reports.
func (yf *YahooFinanceClient) Revenue(ctx context.Context, symbol string) (*RevenueFigures, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	// A rejected crumb is refreshed once before giving up.
	var resp *resty.Response
	for attempt := 0; ; attempt++ {
		crumb, err := yf.sessionCrumb(ctx)
		if err != nil {
			return nil, err
		}

		resp, err = yf.client.R().
			SetContext(ctx).
			SetPathParam("symbol", symbol).
			SetQueryParams(map[string]string{
				"modules": "incomeStatementHistory,financialData",
				"crumb":   crumb,
			}).
			Get("/v10/finance/quoteSummary/{symbol}")
		if err != nil {
			return nil, fmt.Errorf("failed to get revenue for %s: %w", symbol, err)
		}
		if resp.StatusCode() != http.StatusUnauthorized {
			break
		}
		yf.dropCrumb(crumb)
		if attempt > 0 {
			return nil, fmt.Errorf("quote summary for %s HTTP 401: %w", symbol, ErrUnauthorized)
		}
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("quote summary for %s: %w", symbol, ErrNotFound)
	default:
		return nil, &StatusError{Provider: "yahoo", Code: resp.StatusCode()}
	}

	var summary quoteSummaryResponse
	if err := json.Unmarshal(resp.Body(), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse quote summary: %w", err)
	}
	if e := summary.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("yahoo error %s: %s", e.Code, e.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("empty quote summary for %s", symbol)
	}

	res := summary.QuoteSummary.Result[0]
	figures := &RevenueFigures{}
	if h := res.IncomeStatementHistory; h != nil && len(h.IncomeStatementHistory) > 0 {
		if v := h.IncomeStatementHistory[0].TotalRevenue; v != nil {
			figures.Statement = v.Raw
		}
	}
	if fd := res.FinancialData; fd != nil && fd.TotalRevenue != nil {
		figures.FinancialData = fd.TotalRevenue.Raw
	}
	return figures, nil
}
