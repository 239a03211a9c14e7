// Package summarizer builds short extractive summaries of album prose,
// shown after ingestion.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const defaultMaxSentences = 5

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// FrequencySummarizer picks the sentences whose content words are most
// frequent across the whole text.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

type Option func(*FrequencySummarizer)

// WithStopwords ignores extra words, typically album titles and the band
// name, which appear everywhere and would otherwise dominate the ranking.
func WithStopwords(words ...string) Option {
	return func(s *FrequencySummarizer) {
		for _, w := range words {
			for _, tok := range tokenize(w) {
				s.stopwords[tok] = struct{}{}
			}
		}
	}
}

func NewFrequencySummarizer(opts ...Option) *FrequencySummarizer {
	s := &FrequencySummarizer{stopwords: defaultStopwords()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns at most maxSentences sentences in their original order.
// Text without sentence punctuation is returned trimmed.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = defaultMaxSentences
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	tokenized := make([][]string, len(sentences))
	for i, sent := range sentences {
		tokenized[i] = tokenize(sent)
	}
	weights := s.termWeights(tokenized)
	picked := pickTop(scoreSentences(tokenized, weights), maxSentences)

	out := make([]string, 0, len(picked))
	for _, idx := range picked {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

// termWeights counts non-stopword terms and scales them so the most
// frequent term weighs 1.
func (s *FrequencySummarizer) termWeights(sentences [][]string) map[string]float64 {
	weights := make(map[string]float64)
	top := 0.0
	for _, toks := range sentences {
		for _, tok := range toks {
			if _, stop := s.stopwords[tok]; stop {
				continue
			}
			weights[tok]++
			top = math.Max(top, weights[tok])
		}
	}
	if top > 0 {
		for tok := range weights {
			weights[tok] /= top
		}
	}
	return weights
}

// scoreSentences sums term weights per sentence, damped by the square root
// of the sentence length so long sentences do not win by size alone.
func scoreSentences(sentences [][]string, weights map[string]float64) []float64 {
	scores := make([]float64, len(sentences))
	for i, toks := range sentences {
		if len(toks) == 0 {
			continue
		}
		sum := 0.0
		for _, tok := range toks {
			sum += weights[tok]
		}
		scores[i] = sum / math.Sqrt(float64(len(toks)))
	}
	return scores
}

// pickTop returns the indexes of the n best scores in ascending index order.
// Ties keep the earlier sentence.
func pickTop(scores []float64, n int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if n > len(order) {
		n = len(order)
	}
	picked := order[:n]
	sort.Ints(picked)
	return picked
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := strings.Fields(`a an the and or but if then else for to of in on at by with as
		is are was were be been being it its this that these those from up down over under
		again further than so such into about between through during before after above below
		out off own same too very can will just don should now their they his her he she has
		had have which who also`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
