package models

// Placeholder is rendered for every report field whose source was unavailable.
const Placeholder = "N/A"

// Sentiment labels assigned to a scored post.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// CompanyProfile is the structured profile parsed from the language model output.
// A nil field means the model did not return that key.
type CompanyProfile struct {
	CompanyName   *string `json:"company_name,omitempty"`
	Website       *string `json:"website,omitempty"`
	Headquarters  *string `json:"headquarters,omitempty"`
	Industry      *string `json:"industry,omitempty"`
	EmployeeCount *string `json:"employee_count,omitempty"`
	CEO           *string `json:"ceo,omitempty"`
	Founded       *string `json:"founded,omitempty"`
	Competitors   *string `json:"competitors,omitempty"`
}

type NewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Date     string `json:"date"`
}

type TweetSentimentRecord struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

type SentimentScoreSummary struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total returns the number of classified posts.
func (s SentimentScoreSummary) Total() int {
	return s.Positive + s.Negative + s.Neutral
}

// Add counts one post under its label. Unknown labels count as neutral.
func (s *SentimentScoreSummary) Add(label string) {
	switch label {
	case SentimentPositive:
		s.Positive++
	case SentimentNegative:
		s.Negative++
	default:
		s.Neutral++
	}
}

// SentimentResult is the output of one social-media sentiment fetch.
type SentimentResult struct {
	Scores SentimentScoreSummary  `json:"scores"`
	Tweets []TweetSentimentRecord `json:"tweets"`
}

// FinancialSnapshot holds formatted market figures. StockTicker is empty when
// the company could not be resolved to a symbol.
type FinancialSnapshot struct {
	StockTicker string `json:"-"`
	StockPrice  string `json:"stock_price"`
	Revenue     string `json:"revenue"`
}

// EmptyFinancials is the snapshot used when no symbol is known.
func EmptyFinancials() FinancialSnapshot {
	return FinancialSnapshot{StockPrice: Placeholder, Revenue: Placeholder}
}

type Overview struct {
	Headquarters string `json:"headquarters"`
	Website      string `json:"website"`
	Industry     string `json:"industry"`
	CEO          string `json:"ceo"`
	Founded      string `json:"founded"`
	Employees    string `json:"employees"`
	Competitors  string `json:"competitors"`
}

// AggregatedReport is the response body of POST /get_compdata.
type AggregatedReport struct {
	CompanyName      string            `json:"company_name"`
	Overview         Overview          `json:"overview"`
	RecentNews       []NewsItem        `json:"recent_news"`
	TwitterSentiment SentimentResult   `json:"twitter_sentiment"`
	Financials       FinancialSnapshot `json:"financials"`
}

// CompanyRequest is the request body of POST /get_compdata.
type CompanyRequest struct {
	CompanyName string `json:"company_name"`
}
