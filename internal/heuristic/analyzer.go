// Package heuristic builds a rule based call summary without any network access.
package heuristic

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultMaxSentences = 2
	maxSentenceRunes    = 200
	emptySummary        = "No transcript content."
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type topic struct {
	name     string
	keywords []string
}

// Order is the order topics are reported in.
var topics = []topic{
	{name: "billing", keywords: []string{"invoice", "bill", "payment", "refund", "price"}},
	{name: "charging", keywords: []string{"charger", "charging", "cable", "kwh"}},
	{name: "installation", keywords: []string{"install", "electrician", "site visit"}},
	{name: "subscription", keywords: []string{"subscription", "cancel", "contract", "plan"}},
	{name: "account", keywords: []string{"login", "password", "account", "app"}},
	{name: "fault", keywords: []string{"broken", "error", "not working", "fault", "offline"}},
}

var (
	positiveWords = []string{"thank", "great", "perfect", "happy", "resolved", "works now"}
	negativeWords = []string{"angry", "frustrated", "disappointed", "terrible", "complaint", "unacceptable"}
)

type Result struct {
	Summary   string
	Topics    []string
	Sentiment string
}

type Analyzer struct {
	MaxSentences int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{MaxSentences: defaultMaxSentences}
}

// Summarize returns only the summary text of Analyze.
func (analyzer *Analyzer) Summarize(text string) string {
	return analyzer.Analyze(text).Summary
}

func (analyzer *Analyzer) Analyze(text string) Result {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return Result{Summary: emptySummary, Sentiment: SentimentNeutral}
	}

	lower := strings.ToLower(normalized)

	result := Result{
		Topics:    detectTopics(lower),
		Sentiment: detectSentiment(lower),
	}

	maxSentences := analyzer.MaxSentences
	if maxSentences <= 0 {
		maxSentences = defaultMaxSentences
	}

	sentences := splitSentences(normalized)
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}

	parts := make([]string, 0, len(sentences)+2)
	for _, sentence := range sentences {
		parts = append(parts, truncate(sentence))
	}

	if len(result.Topics) > 0 {
		parts = append(parts, "Topics: "+strings.Join(result.Topics, ", ")+".")
	}

	parts = append(parts, "Sentiment: "+result.Sentiment+".")
	result.Summary = strings.Join(parts, " ")

	return result
}

func detectTopics(lower string) []string {
	var found []string

	for _, t := range topics {
		for _, keyword := range t.keywords {
			if strings.Contains(lower, keyword) {
				found = append(found, t.name)
				break
			}
		}
	}

	return found
}

func detectSentiment(lower string) string {
	score := 0

	for _, word := range positiveWords {
		score += strings.Count(lower, word)
	}

	for _, word := range negativeWords {
		score -= strings.Count(lower, word)
	}

	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// splitSentences splits on terminal punctuation followed by a space or the end of text.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)

	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}

		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail+".")
	}

	return sentences
}

func truncate(sentence string) string {
	if utf8.RuneCountInString(sentence) <= maxSentenceRunes {
		return sentence
	}

	return string([]rune(sentence)[:maxSentenceRunes]) + "..."
}
