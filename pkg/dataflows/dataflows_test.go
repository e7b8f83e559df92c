package dataflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWikipediaLoaderLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/Tesla, Inc." {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><head><style>.x{color:red}</style></head><body>
<h1 id="firstHeading">Tesla, Inc.</h1>
<script>var tracking = 1;</script>
<p>Tesla is an American <a href="/wiki/EV">electric vehicle</a> company.</p>
</body></html>`)
	}))
	defer srv.Close()

	loader := NewWikipediaLoader(srv.URL+"/wiki/", 5*time.Second)
	page, err := loader.Load(context.Background(), "Tesla, Inc.")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if page.Title != "Tesla, Inc." {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if !strings.Contains(page.Text, "electric vehicle company") {
		t.Fatalf("page text missing body content: %q", page.Text)
	}
	if strings.Contains(page.Text, "tracking") || strings.Contains(page.Text, "color:red") {
		t.Fatalf("script or style leaked into text: %q", page.Text)
	}
}

func TestWikipediaLoaderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	loader := NewWikipediaLoader(srv.URL+"/wiki/", 5*time.Second)
	_, err := loader.Load(context.Background(), "Zzzznonexistentcorp")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewsAPIGetEverything(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "tesla" || r.URL.Query().Get("apiKey") != "secret" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"status":"ok","totalResults":1,"articles":[
{"source":{"id":null,"name":"Reuters"},"title":"Tesla ships","publishedAt":"2025-01-02T10:00:00Z"}]}`)
	}))
	defer srv.Close()

	client := NewNewsAPIClient(srv.URL, "secret", 5*time.Second)
	resp, err := client.GetEverything(context.Background(), NewsAPIParams{Query: "tesla", PageSize: 5})
	if err != nil {
		t.Fatalf("GetEverything: %v", err)
	}
	if len(resp.Articles) != 1 || resp.Articles[0].Source.Name != "Reuters" {
		t.Fatalf("unexpected articles %+v", resp.Articles)
	}
	if resp.Articles[0].PublishedAt != "2025-01-02T10:00:00Z" {
		t.Fatalf("published date should pass through, got %q", resp.Articles[0].PublishedAt)
	}
}

func TestNewsAPIStatusErrors(t *testing.T) {
	codes := map[int]bool{http.StatusUnauthorized: true, http.StatusTooManyRequests: false}
	for code, unauthorized := range codes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := NewNewsAPIClient(srv.URL, "secret", 5*time.Second)
		_, err := client.GetEverything(context.Background(), NewsAPIParams{Query: "tesla"})
		srv.Close()

		if err == nil {
			t.Fatalf("expected error for HTTP %d", code)
		}
		if errors.Is(err, ErrUnauthorized) != unauthorized {
			t.Fatalf("HTTP %d: unexpected error classification %v", code, err)
		}
	}
}

func TestTwitterSearchRecent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("max_results") != "10" {
			t.Errorf("unexpected max_results %s", r.URL.Query().Get("max_results"))
		}
		fmt.Fprint(w, `{"data":[{"id":"1","text":"love it"},{"id":"2","text":"hate it"}],"meta":{"result_count":2}}`)
	}))
	defer srv.Close()

	tweets, err := NewTwitterClient(srv.URL, TwitterCredentials{BearerToken: "token"}, 5*time.Second).SearchRecent(context.Background(), "tesla", 10)
	if err != nil {
		t.Fatalf("SearchRecent: %v", err)
	}
	if len(tweets) != 2 || tweets[0].Text != "love it" {
		t.Fatalf("unexpected tweets %+v", tweets)
	}

	_, err = NewTwitterClient(srv.URL, TwitterCredentials{BearerToken: "wrong"}, 5*time.Second).SearchRecent(context.Background(), "tesla", 10)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTwitterSearchRecentEmptyAndMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"result_count":0}}`)
	}))
	defer srv.Close()

	tweets, err := NewTwitterClient(srv.URL, TwitterCredentials{BearerToken: "token"}, 5*time.Second).SearchRecent(context.Background(), "tesla", 10)
	if err != nil || len(tweets) != 0 {
		t.Fatalf("expected no tweets and no error, got %v, %v", tweets, err)
	}

	_, err = NewTwitterClient(srv.URL, TwitterCredentials{APIKey: "key"}, 5*time.Second).SearchRecent(context.Background(), "tesla", 10)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without usable credentials, got %v", err)
	}
}

func TestTwitterSearchRecentUserContext(t *testing.T) {
	var (
		mu     sync.Mutex
		header string
	)
	lastHeader := func() string {
		mu.Lock()
		defer mu.Unlock()
		return header
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		header = r.Header.Get("Authorization")
		mu.Unlock()
		fmt.Fprint(w, `{"data":[{"id":"1","text":"love it"}],"meta":{"result_count":1}}`)
	}))
	defer srv.Close()

	creds := TwitterCredentials{
		APIKey:            "consumer",
		APISecretKey:      "consumer-secret",
		AccessToken:       "access",
		AccessTokenSecret: "access-secret",
	}
	tweets, err := NewTwitterClient(srv.URL, creds, 5*time.Second).SearchRecent(context.Background(), "tesla", 10)
	if err != nil {
		t.Fatalf("SearchRecent: %v", err)
	}
	if len(tweets) != 1 {
		t.Fatalf("unexpected tweets %+v", tweets)
	}
	for _, want := range []string{"OAuth ", `oauth_consumer_key="consumer"`, `oauth_token="access"`, "oauth_signature="} {
		if got := lastHeader(); !strings.Contains(got, want) {
			t.Fatalf("authorization %q missing %s", got, want)
		}
	}

	creds.BearerToken = "token"
	if _, err := NewTwitterClient(srv.URL, creds, 5*time.Second).SearchRecent(context.Background(), "tesla", 10); err != nil {
		t.Fatalf("SearchRecent: %v", err)
	}
	if got := lastHeader(); got != "Bearer token" {
		t.Fatalf("bearer token should take precedence, got %q", got)
	}
}

// yahooStub serves the cookie, crumb and quoteSummary endpoints. The crumb is
// only issued to clients holding the session cookie and quoteSummary rejects
// any other crumb.
type yahooStub struct {
	mu          sync.Mutex
	crumb       string
	crumbIssued int
}

func (y *yahooStub) currentCrumb() string {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.crumb
}

func (y *yahooStub) issued() int {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.crumbIssued
}

func (y *yahooStub) rotate(crumb string) {
	y.mu.Lock()
	y.crumb = crumb
	y.mu.Unlock()
}

func (y *yahooStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/cookie":
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	case r.URL.Path == "/v1/test/getcrumb":
		if c, err := r.Cookie("A3"); err != nil || c.Value != "session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		y.mu.Lock()
		y.crumbIssued++
		crumb := y.crumb
		y.mu.Unlock()
		fmt.Fprint(w, crumb)
	case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
		if r.URL.Query().Get("crumb") != y.currentCrumb() {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"finance":{"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`)
			return
		}
		switch strings.TrimPrefix(r.URL.Path, "/v10/finance/quoteSummary/") {
		case "TSLA":
			fmt.Fprint(w, `{"quoteSummary":{"result":[{
"incomeStatementHistory":{"incomeStatementHistory":[{"totalRevenue":{"raw":96773000000,"fmt":"96.77B"}},{"totalRevenue":{"raw":81462000000}}]},
"financialData":{"totalRevenue":{"raw":97690000000}}}],"error":null}}`)
		case "F":
			fmt.Fprint(w, `{"quoteSummary":{"result":[{"incomeStatementHistory":{"incomeStatementHistory":[{}]},
"financialData":{"totalRevenue":{"raw":176191000000}}}],"error":null}}`)
		default:
			http.NotFound(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

func TestYahooRevenue(t *testing.T) {
	stub := &yahooStub{crumb: "crumb-1"}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	client := NewYahooFinanceClient(srv.URL, srv.URL+"/cookie", 5*time.Second)

	figures, err := client.Revenue(context.Background(), "tsla")
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if figures.Statement == nil || figures.Statement.String() != "96773000000" {
		t.Fatalf("unexpected statement revenue %v", figures.Statement)
	}

	figures, err = client.Revenue(context.Background(), "F")
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if figures.Statement != nil || figures.FinancialData == nil {
		t.Fatalf("expected only financial data revenue, got %+v", figures)
	}
	if n := stub.issued(); n != 1 {
		t.Fatalf("expected the crumb to be reused, fetched %d times", n)
	}

	if _, err := client.Revenue(context.Background(), "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestYahooRevenueRefreshesRejectedCrumb(t *testing.T) {
	stub := &yahooStub{crumb: "crumb-1"}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	client := NewYahooFinanceClient(srv.URL, srv.URL+"/cookie", 5*time.Second)
	if _, err := client.Revenue(context.Background(), "TSLA"); err != nil {
		t.Fatalf("Revenue: %v", err)
	}

	stub.rotate("crumb-2")
	if _, err := client.Revenue(context.Background(), "TSLA"); err != nil {
		t.Fatalf("Revenue after crumb rotation: %v", err)
	}
	if n := stub.issued(); n != 2 {
		t.Fatalf("expected a second crumb fetch, got %d", n)
	}
}

func TestYahooRevenueUnauthorized(t *testing.T) {
	// Without the cookie endpoint no crumb is ever issued.
	stub := &yahooStub{crumb: "crumb-1"}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	client := NewYahooFinanceClient(srv.URL, srv.URL+"/missing", 5*time.Second)
	if _, err := client.Revenue(context.Background(), "TSLA"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// A crumb the server keeps rejecting ends as ErrUnauthorized too.
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/test/getcrumb" {
			fmt.Fprint(w, "stale")
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer rejecting.Close()

	client = NewYahooFinanceClient(rejecting.URL, rejecting.URL+"/cookie", 5*time.Second)
	if _, err := client.Revenue(context.Background(), "TSLA"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestYahooLatestClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/TSLA" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"TSLA"},"timestamp":[1700000000,1700086400],
"indicators":{"quote":[{"open":[240,242],"low":[238,241],"high":[245,251],"close":[241.5,250.25],"volume":[100,200]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	price, err := NewYahooFinanceClient(srv.URL, srv.URL+"/cookie", 5*time.Second).LatestClose(context.Background(), "tsla")
	if err != nil {
		t.Fatalf("LatestClose: %v", err)
	}
	if price.String() != "250.25" {
		t.Fatalf("expected the last close, got %s", price)
	}
}

func TestYahooLatestCloseTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewYahooFinanceClient(srv.URL, srv.URL+"/cookie", 200*time.Millisecond).LatestClose(context.Background(), "TSLA")
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("chart request was not bounded by the client timeout: %s", elapsed)
	}
}

func TestWithRetry(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}

	attempts := 0
	err := WithRetry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("expected success on third attempt, got %v after %d", err, attempts)
	}

	attempts = 0
	err = WithRetry(context.Background(), cfg, func() error {
		attempts++
		return ErrUnauthorized
	})
	if !errors.Is(err, ErrUnauthorized) || attempts != 1 {
		t.Fatalf("credential errors must not be retried: %v after %d", err, attempts)
	}

	attempts = 0
	if err := WithRetry(context.Background(), nil, func() error { attempts++; return errors.New("x") }); err == nil || attempts != 1 {
		t.Fatalf("nil config should run once, got %v after %d", err, attempts)
	}
}

func TestLongportSymbol(t *testing.T) {
	cases := map[string]string{"tsla": "TSLA.US", "BMW.DE": "BMW.DE", " 700.HK ": "700.HK"}
	for in, want := range cases {
		if got := LongportSymbol(in); got != want {
			t.Fatalf("LongportSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}
