// Package display renders an aggregated report for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/compdata/models"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1).
		MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		MarginTop(1)

	labelStyle = lipgloss.NewStyle().Bold(true)

	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Render writes every section of report to w.
func Render(w io.Writer, report *models.AggregatedReport) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📌 Company details : " + report.CompanyName))
	b.WriteString("\n")
	o := report.Overview
	for _, row := range [][2]string{
		{"Headquarters", o.Headquarters},
		{"Website", o.Website},
		{"Industry", o.Industry},
		{"CEO", o.CEO},
		{"Founded", o.Founded},
		{"Employees", o.Employees},
		{"Competitors", o.Competitors},
	} {
		writeField(&b, row[0], row[1])
	}

	writeSection(&b, "📰 Recent News")
	if len(report.RecentNews) == 0 {
		b.WriteString(mutedStyle.Render("No recent news found."))
		b.WriteString("\n")
	}
	for _, item := range report.RecentNews {
		fmt.Fprintf(&b, "- %s (%s, %s)\n", labelStyle.Render(item.Headline), item.Source, item.Date)
	}

	writeSection(&b, "💰 Financials about the company")
	writeField(&b, "Stock Price", report.Financials.StockPrice)
	writeField(&b, "Revenue", report.Financials.Revenue)

	writeSection(&b, "📊 Twitter Sentiment Analysis")
	scores := report.TwitterSentiment.Scores
	writeField(&b, "Positive Tweets", fmt.Sprint(scores.Positive))
	writeField(&b, "Negative Tweets", fmt.Sprint(scores.Negative))
	writeField(&b, "Neutral Tweets", fmt.Sprint(scores.Neutral))

	if len(report.TwitterSentiment.Tweets) == 0 {
		b.WriteString("\nNo recent tweets found.\n")
	} else {
		writeSection(&b, "🐦 Recent Tweets related to the company")
		for _, tweet := range report.TwitterSentiment.Tweets {
			fmt.Fprintf(&b, "%s: %s\n", sentimentLabel(tweet.Sentiment), tweet.Text)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, title string) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(label+":"), value)
}

func sentimentLabel(sentiment string) string {
	switch sentiment {
	case models.SentimentPositive:
		return positiveStyle.Render("😊 Positive")
	case models.SentimentNegative:
		return negativeStyle.Render("😡 Negative")
	default:
		return neutralStyle.Render("😐 Neutral")
	}
}
