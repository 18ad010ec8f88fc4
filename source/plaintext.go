package source

import "os"

// PlainTextDecoder reads UTF-8 text files verbatim.
type PlainTextDecoder struct{}

var _ Decoder = (*PlainTextDecoder)(nil)

// NewPlainTextDecoder creates a plain text decoder.
func NewPlainTextDecoder() *PlainTextDecoder {
	return &PlainTextDecoder{}
}

// Extensions returns the extensions handled as plain text.
func (d *PlainTextDecoder) Extensions() []string {
	return []string{".txt", ".md"}
}

// Decode reads the whole file as text.
func (d *PlainTextDecoder) Decode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
