package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFDecoder extracts the plain text layer of a PDF file.
type PDFDecoder struct{}

var _ Decoder = (*PDFDecoder)(nil)

// NewPDFDecoder creates a PDF decoder.
func NewPDFDecoder() *PDFDecoder {
	return &PDFDecoder{}
}

// Extensions returns the extensions handled as PDF.
func (d *PDFDecoder) Extensions() []string {
	return []string{".pdf"}
}

// Decode opens the PDF and concatenates its extracted text.
func (d *PDFDecoder) Decode(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	return buf.String(), nil
}
