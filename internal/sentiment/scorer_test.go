package sentiment

import (
	"testing"

	"github.com/dyike/compdata/models"
)

type fixedScorer map[string]float64

func (f fixedScorer) Polarity(text string) float64 { return f[text] }

func TestLabelBoundaries(t *testing.T) {
	cases := map[float64]string{
		0.0001:  models.SentimentPositive,
		1:       models.SentimentPositive,
		-0.0001: models.SentimentNegative,
		0:       models.SentimentNeutral,
	}
	for polarity, want := range cases {
		if got := Label(polarity); got != want {
			t.Fatalf("Label(%v) = %s, want %s", polarity, got, want)
		}
	}
}

func TestClassifyCountsMatchRecords(t *testing.T) {
	scorer := fixedScorer{"great": 0.8, "awful": -0.6, "meh": 0, "fine": 0.1}
	texts := []string{"great", "awful", "meh", "fine", "unknown"}

	result := Classify(scorer, texts)
	if result.Scores.Total() != len(result.Tweets) || len(result.Tweets) != len(texts) {
		t.Fatalf("counts %+v do not match %d records", result.Scores, len(result.Tweets))
	}
	want := models.SentimentScoreSummary{Positive: 2, Negative: 1, Neutral: 2}
	if result.Scores != want {
		t.Fatalf("unexpected scores %+v", result.Scores)
	}
	for i, rec := range result.Tweets {
		if rec.Text != texts[i] {
			t.Fatalf("record %d out of provider order: %q", i, rec.Text)
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	result := Classify(fixedScorer{}, nil)
	if result.Tweets == nil || len(result.Tweets) != 0 || result.Scores.Total() != 0 {
		t.Fatalf("expected empty non-nil result, got %+v", result)
	}
}

func TestVaderScorer(t *testing.T) {
	scorer := NewVaderScorer()
	if p := scorer.Polarity("I love this company, great product!"); p <= 0 {
		t.Fatalf("expected positive polarity, got %v", p)
	}
	if p := scorer.Polarity("This is a terrible, awful disaster."); p >= 0 {
		t.Fatalf("expected negative polarity, got %v", p)
	}
	if p := scorer.Polarity("The meeting is on Tuesday."); p != 0 {
		t.Fatalf("expected zero polarity, got %v", p)
	}
}
