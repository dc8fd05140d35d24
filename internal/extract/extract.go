// Package extract turns uploaded documents into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable indicates a document that could not be parsed.
var ErrUnreadable = errors.New("document unreadable")

// Extractor extracts the text content of a stored document.
type Extractor interface {
	// Extract returns the document's text with sections in original order.
	Extract(path string) (string, error)
}

// New returns an extractor that dispatches on file extension: PDF files go
// through the PDF extractor, everything else is read as plain text.
func New() Extractor {
	return &dispatcher{pdf: &PDFExtractor{}, text: &TextExtractor{}}
}

type dispatcher struct {
	pdf  Extractor
	text Extractor
}

func (d *dispatcher) Extract(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return d.pdf.Extract(path)
	}
	return d.text.Extract(path)
}

// PDFExtractor extracts text from PDF documents, one page at a time,
// concatenated in page order with a newline separator.
type PDFExtractor struct{}

// Extract implements Extractor.
func (e *PDFExtractor) Extract(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", ErrUnreadable, filepath.Base(path), err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d of %s: %v", ErrUnreadable, i, filepath.Base(path), err)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}

// TextExtractor reads a document verbatim as UTF-8 text.
type TextExtractor struct{}

// Extract implements Extractor.
func (e *TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrUnreadable, filepath.Base(path), err)
	}
	// Reject binary content masquerading as text.
	if bytes.ContainsRune(data, 0) {
		return "", fmt.Errorf("%w: %s contains binary data", ErrUnreadable, filepath.Base(path))
	}
	return string(data), nil
}
