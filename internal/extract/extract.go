// Package extract turns uploaded .txt and .pdf documents into normalized plain text.
//
// Extraction is pure: it reads the supplied bytes and nothing else. Storing the
// upload, calling remote APIs and enforcing timeouts belong to the caller.
package extract

import (
	"strings"
	"unicode/utf8"
)

// Kind is the document type declared by an upload's filename.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// KindFromFilename maps the filename suffix to a Kind. Matching is
// case-sensitive: "notes.TXT" is KindUnknown.
func KindFromFilename(filename string) Kind {
	switch {
	case strings.HasSuffix(filename, ".txt"):
		return KindText
	case strings.HasSuffix(filename, ".pdf"):
		return KindPDF
	default:
		return KindUnknown
	}
}

// Result is the normalized text of a document.
type Result struct {
	Text string
	// Pages is the number of pages seen in a PDF; zero for text uploads.
	Pages int
	// EmptyPages counts PDF pages that contributed no text.
	EmptyPages int
}

// Partial reports whether some PDF pages yielded no text.
func (r *Result) Partial() bool { return r.EmptyPages > 0 }

// Extractor converts document bytes into a Result.
type Extractor struct {
	pdf PDFDecoder
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPDFDecoder replaces the default PDF page decoder.
func WithPDFDecoder(d PDFDecoder) Option {
	return func(e *Extractor) {
		if d != nil {
			e.pdf = d
		}
	}
}

// New returns an Extractor backed by LedongthucDecoder unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{pdf: LedongthucDecoder{}}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ExtractFile derives the kind from filename and extracts data.
func (e *Extractor) ExtractFile(filename string, data []byte) (*Result, error) {
	kind := KindFromFilename(filename)
	if kind == KindUnknown {
		return nil, unsupported(filename)
	}
	return e.Extract(kind, data)
}

// Extract decodes data as the given kind and normalizes the text.
// It fails with a *DecodeError or ErrUnsupportedFormat and never returns
// partial text alongside an error.
func (e *Extractor) Extract(kind Kind, data []byte) (*Result, error) {
	switch kind {
	case KindText:
		if !utf8.Valid(data) {
			return nil, &DecodeError{Kind: kind, Err: ErrInvalidUTF8}
		}
		return &Result{Text: Normalize(string(data))}, nil
	case KindPDF:
		return e.extractPDF(data)
	default:
		return nil, unsupported(kind.String())
	}
}

func (e *Extractor) extractPDF(data []byte) (*Result, error) {
	pages, err := e.pdf.Pages(data)
	if err != nil {
		return nil, &DecodeError{Kind: KindPDF, Err: err}
	}

	res := &Result{Pages: len(pages)}
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimFunc(p, isSpace) == "" {
			res.EmptyPages++
		}
		if p == "" {
			continue
		}
		texts = append(texts, p)
	}
	res.Text = Normalize(strings.Join(texts, " "))
	return res, nil
}
