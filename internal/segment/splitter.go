package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pdfrag/internal/domain"
)

// Splitter cuts page text into overlapping chunks. It tries
// separators in priority order (paragraph break, line break, sentence
// end, space, hard cut) so chunks land close to chunkSize without
// ever exceeding it.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Segment normalizes the page text and splits it into chunks. Empty
// pages yield no chunks. Same input and config always produce the
// same chunk sequence; point IDs derived from chunk text rely on
// that.
func (s *Splitter) Segment(pageText string, pageNumber int) []domain.Chunk {
	text := Normalize(pageText)
	if text == "" {
		return nil
	}
	pieces := s.split(text, separators)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ContentID(p),
			Text:       p,
			PageNumber: pageNumber,
		})
	}
	return chunks
}

var (
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	spaceRun     = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// Normalize keeps paragraph breaks readable while collapsing noise:
// 3+ newlines become 2, runs of horizontal whitespace become one
// space, ends are trimmed.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (s *Splitter) split(text string, seps []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	if len(seps) == 0 {
		return s.hardCut(text)
	}
	sep := seps[0]
	parts := splitKeep(text, sep)
	if len(parts) == 1 {
		// separator absent, fall through to the next one
		return s.split(text, seps[1:])
	}
	var pieces []string
	for _, p := range parts {
		if len(p) > s.chunkSize {
			pieces = append(pieces, s.split(p, seps[1:])...)
		} else {
			pieces = append(pieces, p)
		}
	}
	return s.merge(pieces)
}

// splitKeep splits on sep but keeps the separator attached to the
// preceding part, so joining parts reproduces the original text.
func splitKeep(text, sep string) []string {
	raw := strings.Split(text, sep)
	parts := make([]string, 0, len(raw))
	for i, r := range raw {
		if i < len(raw)-1 {
			r += sep
		}
		if r != "" {
			parts = append(parts, r)
		}
	}
	return parts
}

// merge greedily packs pieces into chunks of at most chunkSize,
// carrying a tail of at most chunkOverlap characters into the next
// chunk so answers spanning a split point stay retrievable.
func (s *Splitter) merge(pieces []string) []string {
	var out []string
	var window []string
	total := 0
	for _, p := range pieces {
		if total > 0 && total+len(p) > s.chunkSize {
			if joined := strings.TrimSpace(strings.Join(window, "")); joined != "" {
				out = append(out, joined)
			}
			for len(window) > 0 && (total > s.chunkOverlap || total+len(p) > s.chunkSize) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += len(p)
	}
	if joined := strings.TrimSpace(strings.Join(window, "")); joined != "" {
		out = append(out, joined)
	}
	return out
}

// hardCut is the last resort for text with no usable separators:
// fixed-size windows advancing by chunkSize-chunkOverlap, aligned to
// rune boundaries.
func (s *Splitter) hardCut(text string) []string {
	stride := s.chunkSize - s.chunkOverlap
	if stride <= 0 {
		stride = s.chunkSize
	}
	var out []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			out = append(out, text[start:])
			break
		}
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		out = append(out, text[start:end])
		next := start + stride
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
	return out
}
