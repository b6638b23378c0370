package domain

import "github.com/google/uuid"

// ContentID derives a vector store point ID from chunk text: an
// MD5-based UUID, so re-ingesting unchanged text overwrites the same
// point instead of duplicating it.
func ContentID(text string) string {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(text)).String()
}

// Page is the text content of a single PDF page, 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded span of one page's text, the unit of embedding
// and retrieval. ID is an MD5-based UUID of Text, so identical content
// always maps to the same vector store point.
type Chunk struct {
	ID         string
	Text       string
	PageNumber int
}

// Point is a stored vector with its citable payload.
type Point struct {
	ID         string
	Vector     []float32
	Text       string
	PageNumber int
}

// Match is one similarity-search hit. Score semantics are backend
// defined; higher is always more similar.
type Match struct {
	Score      float32
	Text       string
	PageNumber int
}

// NoContentSentinel is returned as the context text when the store
// held nothing for the document, so callers can tell "no content"
// apart from a low-confidence but real context.
const NoContentSentinel = "No content could be retrieved from the uploaded PDF."

// Context is the assembled, budget-limited context for one query.
type Context struct {
	Text     string
	Matches  int
	MinScore float32
	MaxScore float32
	// Found is false only when the store returned zero matches and
	// Text holds NoContentSentinel.
	Found bool
}
