package pdf

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"pdfrag/internal/domain"
)

// Parser extracts per-page text from PDF bytes.
type Parser struct{}

var _ domain.PDFParser = (*Parser)(nil)

func NewParser() *Parser { return &Parser{} }

// Parse returns the ordered pages of the document. A PDF the reader
// cannot open surfaces as a single *domain.ParseError; pages whose
// text cannot be decoded are returned empty rather than dropped, so
// page numbering stays aligned with the source document.
func (p *Parser) Parse(data []byte) (pages []domain.Page, err error) {
	// the reader resolves objects lazily and panics on corruption it
	// meets past the xref parse, e.g. in a broken page tree
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &domain.ParseError{Cause: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &domain.ParseError{Cause: fmt.Errorf("open reader: %w", err)}
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, &domain.ParseError{Cause: fmt.Errorf("document has no pages")}
	}

	pages = make([]domain.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, domain.Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, domain.Page{Number: i})
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}
	return pages, nil
}
