// Command dataflow calls each upstream provider once for a company and
// prints the raw results. Useful when checking credentials.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dyike/compdata/config"
	"github.com/dyike/compdata/internal/ticker"
	"github.com/dyike/compdata/pkg/app"
	"github.com/dyike/compdata/pkg/dataflows"
)

func main() {
	ctx := context.Background()
	cfg := config.DefaultConfig()

	company := "Tesla"
	if len(os.Args) > 1 {
		company = os.Args[1]
	}

	page, err := dataflows.NewWikipediaLoader(cfg.SourceBaseURL, cfg.OutboundTimeout).Load(ctx, company)
	if err != nil {
		fmt.Printf("wikipedia: %v\n", err)
	} else {
		fmt.Printf("wikipedia: %s (%d chars)\n", page.Title, len(page.Text))
	}

	news, err := dataflows.NewNewsAPIClient(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, cfg.OutboundTimeout).
		GetEverything(ctx, dataflows.NewsAPIParams{Query: company, PageSize: 5})
	printJSON("newsapi", news, err)

	tweets, err := dataflows.NewTwitterClient(cfg.TwitterBaseURL, app.TwitterCredentials(cfg), cfg.OutboundTimeout).
		SearchRecent(ctx, company, 10)
	printJSON("twitter", tweets, err)

	symbol, ok := ticker.Resolve(company)
	if !ok {
		fmt.Printf("no ticker known for %q\n", company)
		return
	}

	yahoo := dataflows.NewYahooFinanceClient(cfg.YahooBaseURL, cfg.YahooCookieURL, cfg.OutboundTimeout)
	price, err := yahoo.LatestClose(ctx, symbol)
	printJSON("yahoo close", price, err)

	revenue, err := yahoo.Revenue(ctx, symbol)
	printJSON("yahoo revenue", revenue, err)

	if cfg.MarketDataProvider == config.MarketDataLongport {
		lp, err := dataflows.NewLongportClient(dataflows.LongportConfig{
			AppKey:      cfg.LongportAppKey,
			AppSecret:   cfg.LongportAppSecret,
			AccessToken: cfg.LongportAccessToken,
		})
		if err != nil {
			fmt.Printf("longport: %v\n", err)
			return
		}
		lpClose, err := lp.LatestClose(ctx, symbol)
		printJSON("longport close", lpClose, err)
	}
}

func printJSON(label string, v any, err error) {
	if err != nil {
		fmt.Printf("%s: %v\n", label, err)
		return
	}
	payload, _ := json.Marshal(v)
	fmt.Printf("%s: %s\n", label, payload)
}
