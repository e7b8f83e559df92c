// Package sentiment classifies short texts by lexical polarity.
package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/dyike/compdata/models"
)

// Scorer returns a signed polarity for a text; 0 means no valence.
type Scorer interface {
	Polarity(text string) float64
}

// VaderScorer scores with the VADER lexicon. The analyzer is read-only after
// construction and safe for concurrent use.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score in [-1, 1].
func (v *VaderScorer) Polarity(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// Label maps a polarity to its category. Exactly zero is neutral.
func Label(polarity float64) string {
	switch {
	case polarity > 0:
		return models.SentimentPositive
	case polarity < 0:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Classify scores every text in order and tallies the labels.
func Classify(scorer Scorer, texts []string) models.SentimentResult {
	result := models.SentimentResult{Tweets: make([]models.TweetSentimentRecord, 0, len(texts))}
	for _, text := range texts {
		label := Label(scorer.Polarity(text))
		result.Tweets = append(result.Tweets, models.TweetSentimentRecord{Text: text, Sentiment: label})
		result.Scores.Add(label)
	}
	return result
}
