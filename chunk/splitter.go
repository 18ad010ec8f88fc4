// Package chunk splits documents into overlapping fixed-size text windows.
package chunk

import (
	"maps"

	"github.com/poiesic/semdex/core"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping bytes between
// consecutive chunks of the same document.
const DefaultOverlap = 200

// Splitter produces overlapping fixed-size chunks from documents.
// Splitting is pure and deterministic: identical inputs always yield an
// identical chunk sequence.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// New creates a new Splitter with the given options.
// Returns ErrInvalidChunkSize if the chunk size is not positive, or
// ErrInvalidOverlap unless 0 <= overlap < chunk size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		return nil, ErrInvalidOverlap
	}

	return s, nil
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split walks the document text from offset 0, emitting a chunk spanning
// [cursor, cursor+chunkSize) clipped to the text length and advancing the
// cursor by chunkSize-overlap, until an emitted chunk reaches the end of
// the text. A document whose text fits within one chunk size yields exactly
// one chunk; a document with no text yields none. Source metadata is copied
// onto every chunk.
func (s *Splitter) Split(doc core.Document) []core.Chunk {
	text := doc.Text
	textLen := len(text)
	if textLen == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	chunks := make([]core.Chunk, 0, (textLen/step)+1)

	for start := 0; ; start += step {
		end := start + s.chunkSize
		if end > textLen {
			end = textLen
		}

		chunkText := text[start:end]
		chunks = append(chunks, core.Chunk{
			Id:          core.IDFromContent(chunkText),
			Text:        chunkText,
			SourceID:    doc.SourceID,
			OffsetStart: start,
			OffsetEnd:   end,
			Metadata:    maps.Clone(doc.Metadata),
		})

		if end == textLen {
			break
		}
	}

	return chunks
}
