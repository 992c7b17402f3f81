package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFDecoder supplies the raw text of each page of a PDF document.
type PDFDecoder interface {
	// Pages returns one entry per page in document order. A page without
	// extractable text (a scanned image, for instance) is returned as "".
	// An error means the byte stream is not a parseable PDF.
	Pages(data []byte) ([]string, error)
}

// LedongthucDecoder decodes PDFs with github.com/ledongthuc/pdf.
// It keeps no state and is safe for concurrent use.
type LedongthucDecoder struct{}

var _ PDFDecoder = LedongthucDecoder{}

// Pages implements PDFDecoder. The decoder library panics on some corrupt
// inputs; those panics are reported as errors.
func (LedongthucDecoder) Pages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, pageText(reader.Page(i)))
	}
	return pages, nil
}

// pageText returns "" for pages whose content cannot be turned into text.
func pageText(p pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if p.V.IsNull() {
		return ""
	}
	s, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return s
}
