package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"pdfrag/internal/domain"
)

// Frequency is an extractive summarizer: sentences are scored by the
// normalized frequency of their non-stopword tokens. Used to show a
// short description of a document right after ingestion; it never
// feeds the retrieval pipeline.
type Frequency struct {
	wordPattern     *regexp.Regexp
	sentencePattern *regexp.Regexp
	stopwords       map[string]struct{}
}

var _ domain.Summarizer = (*Frequency)(nil)

func NewFrequency() *Frequency {
	return &Frequency{
		wordPattern:     regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:       stopwords(),
	}
}

// SummarizePages summarizes the concatenated text of parsed pages.
func (f *Frequency) SummarizePages(pages []domain.Page, maxSentences int) (string, error) {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return f.Summarize(b.String(), maxSentences)
}

// Summarize keeps the maxSentences highest-scoring sentences in their
// original order.
func (f *Frequency) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := f.sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := make(map[string]float64)
	for _, sent := range sentences {
		for _, tok := range f.tokens(sent) {
			if _, skip := f.stopwords[tok]; skip {
				continue
			}
			freq[tok]++
		}
	}
	var maxFreq float64
	for _, v := range freq {
		if v > maxFreq {
			maxFreq = v
		}
	}
	if maxFreq > 0 {
		for k := range freq {
			freq[k] /= maxFreq
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		toks := f.tokens(sent)
		var score float64
		for _, tok := range toks {
			score += freq[tok]
		}
		// dampen the long-sentence advantage
		if n := float64(len(toks)); n > 0 {
			score /= math.Sqrt(n)
		}
		scores[i] = ranked{idx: i, score: score}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = scores[i].idx
	}
	sort.Ints(picked)

	out := make([]string, 0, len(picked))
	for _, idx := range picked {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func (f *Frequency) tokens(text string) []string {
	return f.wordPattern.FindAllString(strings.ToLower(text), -1)
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of",
		"in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been",
		"being", "it", "this", "that", "these", "those", "from", "up", "down", "over",
		"under", "again", "further", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
