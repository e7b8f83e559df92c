package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers understood by internal/llm.
const (
	ProviderGroq     = "groq"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

// Price sources understood by internal/analysts.
const (
	MarketDataYahoo    = "yahoo"
	MarketDataLongport = "longport"
)

type Config struct {
	ServerHost      string        `json:"server_host"`
	ServerPort      int           `json:"server_port"`
	OutboundTimeout time.Duration `json:"outbound_timeout"`
	RetryMax        int           `json:"retry_max"`

	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
	LLMBaseURL  string `json:"llm_base_url"`

	MarketDataProvider string `json:"market_data_provider"`

	SourceBaseURL  string `json:"source_base_url"`
	NewsAPIBaseURL string `json:"newsapi_base_url"`
	TwitterBaseURL string `json:"twitter_base_url"`
	YahooBaseURL   string `json:"yahoo_base_url"`
	YahooCookieURL string `json:"yahoo_cookie_url"`

	Debug     bool   `json:"debug"`
	LogFormat string `json:"log_format"`

	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`

	// AI Model API Keys
	GroqAPIKey     string `json:"-"`
	OpenAIAPIKey   string `json:"-"`
	DeepSeekAPIKey string `json:"-"`

	NewsAPIKey string `json:"-"`

	TwitterAPIKey            string `json:"-"`
	TwitterAPISecretKey      string `json:"-"`
	TwitterAccessToken       string `json:"-"`
	TwitterAccessTokenSecret string `json:"-"`
	TwitterBearerToken       string `json:"-"`

	LongportAppKey      string `json:"-"`
	LongportAppSecret   string `json:"-"`
	LongportAccessToken string `json:"-"`
}

func DefaultConfig() *Config {
	cfg := defaults()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func defaults() *Config {
	return &Config{
		ServerHost:      "0.0.0.0",
		ServerPort:      8000,
		OutboundTimeout: 30 * time.Second,
		RetryMax:        2,

		LLMProvider: ProviderGroq,
		LLMModel:    "llama-3.3-70b-versatile",
		LLMBaseURL:  "https://api.groq.com/openai/v1",

		MarketDataProvider: MarketDataYahoo,

		SourceBaseURL:  "https://en.wikipedia.org/wiki/",
		NewsAPIBaseURL: "https://newsapi.org",
		TwitterBaseURL: "https://api.twitter.com",
		YahooBaseURL:   "https://query2.finance.yahoo.com",
		YahooCookieURL: "https://fc.yahoo.com",

		LogFormat: "text",

		EinoDebugPort: 52538,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.ServerHost = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ServerPort = v
		}
	}
	if val := os.Getenv("OUTBOUND_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.OutboundTimeout = d
		}
	}
	if val := os.Getenv("RETRY_MAX"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RetryMax = v
		}
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
		switch c.LLMProvider {
		case ProviderOpenAI:
			c.LLMModel = "gpt-4o-mini"
			c.LLMBaseURL = "https://api.openai.com/v1"
		case ProviderDeepSeek:
			c.LLMModel = "deepseek-chat"
			c.LLMBaseURL = ""
		}
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("LLM_BASE_URL"); val != "" {
		c.LLMBaseURL = val
	}

	if val := os.Getenv("MARKET_DATA_PROVIDER"); val != "" {
		c.MarketDataProvider = strings.ToLower(val)
	}

	if val := os.Getenv("SOURCE_BASE_URL"); val != "" {
		c.SourceBaseURL = val
	}
	if val := os.Getenv("NEWSAPI_BASE_URL"); val != "" {
		c.NewsAPIBaseURL = val
	}
	if val := os.Getenv("TWITTER_BASE_URL"); val != "" {
		c.TwitterBaseURL = val
	}
	if val := os.Getenv("YAHOO_BASE_URL"); val != "" {
		c.YahooBaseURL = val
	}

	if val := os.Getenv("YAHOO_COOKIE_URL"); val != "" {
		c.YahooCookieURL = val
	}

	if val := os.Getenv("COMPDATA_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.LogFormat = strings.ToLower(val)
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}

	c.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	c.NewsAPIKey = os.Getenv("NEWSAPI_KEY")

	c.TwitterAPIKey = os.Getenv("TWITTER_API_KEY")
	c.TwitterAPISecretKey = os.Getenv("TWITTER_API_SECRET_KEY")
	c.TwitterAccessToken = os.Getenv("TWITTER_ACCESS_TOKEN")
	c.TwitterAccessTokenSecret = os.Getenv("TWITTER_ACCESS_TOKEN_SECRET")
	c.TwitterBearerToken = os.Getenv("TWITTER_BEARER_TOKEN")

	c.LongportAppKey = os.Getenv("LONGPORT_APP_KEY")
	c.LongportAppSecret = os.Getenv("LONGPORT_APP_SECRET")
	c.LongportAccessToken = os.Getenv("LONGPORT_ACCESS_TOKEN")
}

// LLMAPIKey returns the credential of the selected LLM provider.
func (c *Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderDeepSeek:
		return c.DeepSeekAPIKey
	default:
		return c.GroqAPIKey
	}
}

// Validate reports every missing credential and invalid setting at once.
func (c *Config) Validate() error {
	var missing []string
	require := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}

	switch c.LLMProvider {
	case ProviderGroq:
		require("GROQ_API_KEY", c.GroqAPIKey)
	case ProviderOpenAI:
		require("OPENAI_API_KEY", c.OpenAIAPIKey)
	case ProviderDeepSeek:
		require("DEEPSEEK_API_KEY", c.DeepSeekAPIKey)
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLMProvider)
	}

	require("NEWSAPI_KEY", c.NewsAPIKey)
	require("TWITTER_API_KEY", c.TwitterAPIKey)
	require("TWITTER_API_SECRET_KEY", c.TwitterAPISecretKey)
	require("TWITTER_ACCESS_TOKEN", c.TwitterAccessToken)
	require("TWITTER_ACCESS_TOKEN_SECRET", c.TwitterAccessTokenSecret)

	switch c.MarketDataProvider {
	case MarketDataYahoo:
	case MarketDataLongport:
		require("LONGPORT_APP_KEY", c.LongportAppKey)
		require("LONGPORT_APP_SECRET", c.LongportAppSecret)
		require("LONGPORT_ACCESS_TOKEN", c.LongportAccessToken)
	default:
		return fmt.Errorf("unsupported market data provider %q", c.MarketDataProvider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing API keys in environment variables: %s", strings.Join(missing, ", "))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d", c.ServerPort)
	}
	if c.OutboundTimeout <= 0 {
		return fmt.Errorf("outbound timeout must be positive")
	}
	return nil
}

// Longest wait between two retry attempts; matches dataflows.DefaultRetryConfig.
const maxRetryBackoff = 5 * time.Second

// FanOutBudget bounds the concurrent financials, news and sentiment step:
// every retry attempt of the slowest retried call plus the backoff between them.
func (c *Config) FanOutBudget() time.Duration {
	attempts := c.RetryMax + 1
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(attempts)*c.OutboundTimeout + time.Duration(attempts-1)*maxRetryBackoff
}

// RequestBudget is the worst-case duration of one report: source page,
// model extraction and the fan-out.
func (c *Config) RequestBudget() time.Duration {
	return 2*c.OutboundTimeout + c.FanOutBudget()
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
