package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	shared "github.com/sahamlab/signal-engine/internal/domain"
)

// Market mood labels for the daily recap.
const (
	MoodOptimistic = "OPTIMISTIC"
	MoodCautious   = "CAUTIOUS"
	MoodNeutral    = "NEUTRAL"
)

// recapWindow is how far back the recap looks.
const recapWindow = 24 * time.Hour

// moodMargin: the positive-minus-negative balance must exceed this share of
// all articles before the mood leaves NEUTRAL.
const moodMargin = 0.2

// Recap summarizes the last day of news: overall mood, dominant topics and
// the most-mentioned security.
type Recap struct {
	Mood           string `json:"mood"`
	SentimentScore int    `json:"sentiment_score"` // positive minus negative count
	TopTopics      string `json:"top_topic"`
	TopSymbol      string `json:"top_symbol,omitempty"`
	Recap          string `json:"recap"`
}

var wordPattern = regexp.MustCompile(`\w+`)

// Common title filler that would otherwise dominate topic counts.
var recapStopwords = map[string]bool{
	"saham": true, "untuk": true, "dengan": true, "akan": true, "pada": true,
	"yang": true, "market": true, "bursa": true, "news": true, "hari": true,
	"juta": true, "miliar": true, "triliun": true, "stock": true, "this": true,
	"that": true, "with": true, "from": true, "after": true, "over": true,
	"into": true, "amid": true, "says": true, "shares": true, "price": true,
}

// BuildRecap reduces the news published inside the recap window to a single
// market-mood summary. Works over already-fetched items only.
func (s *Service) BuildRecap(items []shared.NewsItem, now time.Time) Recap {
	since := now.Add(-recapWindow)

	var recent []shared.NewsItem
	for _, item := range items {
		if !item.PublishedAt.Before(since) {
			recent = append(recent, item)
		}
	}

	if len(recent) == 0 {
		return Recap{
			Mood:      MoodNeutral,
			TopTopics: "",
			Recap:     "Not enough news in the last 24 hours for a recap. The market looks quiet.",
		}
	}

	positive, negative := 0, 0
	for _, item := range recent {
		switch item.SentimentLabel {
		case shared.SentimentPositive:
			positive++
		case shared.SentimentNegative:
			negative++
		}
	}
	balance := positive - negative

	mood, tone := MoodNeutral, "moving sideways"
	switch {
	case float64(balance) > float64(len(recent))*moodMargin:
		mood, tone = MoodOptimistic, "dominated by positive sentiment"
	case float64(balance) < -float64(len(recent))*moodMargin:
		mood, tone = MoodCautious, "under pressure"
	}

	topics := topTopics(recent, 3)
	topSymbol := topMentionedSymbol(recent)

	recap := fmt.Sprintf("Market mood is %s, %s.", mood, tone)
	if topics != "" {
		recap += fmt.Sprintf(" Investors are focused on %s.", topics)
	}
	if topSymbol != "" {
		recap += fmt.Sprintf(" %s drew the most coverage in the last 24 hours.", topSymbol)
	}

	return Recap{
		Mood:           mood,
		SentimentScore: balance,
		TopTopics:      topics,
		TopSymbol:      topSymbol,
		Recap:          recap,
	}
}

// topTopics extracts the most frequent meaningful title words.
func topTopics(items []shared.NewsItem, n int) string {
	counts := make(map[string]int)
	for _, item := range items {
		for _, word := range wordPattern.FindAllString(strings.ToLower(item.Title), -1) {
			if len(word) <= 3 || recapStopwords[word] {
				continue
			}
			counts[word]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, ", ")
}

// topMentionedSymbol finds the security with the most related articles.
func topMentionedSymbol(items []shared.NewsItem) string {
	counts := make(map[string]int)
	for _, item := range items {
		if item.RelatedSymbol == "" || item.RelatedSymbol == "Global" {
			continue
		}
		counts[item.RelatedSymbol]++
	}

	best, bestCount := "", 0
	for symbol, count := range counts {
		if count > bestCount || (count == bestCount && symbol < best) {
			best, bestCount = symbol, count
		}
	}
	return best
}
