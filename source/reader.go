// Package source reads raw files into documents ready for chunking.
//
// A Reader produces core.Document values from the file system. Decoding is
// pluggable per file extension via the Decoder interface; unrecognized or
// undecodable files are skipped with a log entry so one bad file never
// aborts a corpus load.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/semdex/core"
)

// Decoder extracts plain text from one file format.
type Decoder interface {
	// Extensions returns the lowercase file extensions (including the dot)
	// this decoder handles.
	Extensions() []string

	// Decode reads the file at path and returns its extracted text.
	Decode(path string) (string, error)
}

// Reader produces the documents of a corpus.
type Reader interface {
	// Read returns one document per recognized file. An empty corpus yields
	// an empty slice, not an error.
	Read(ctx context.Context) ([]core.Document, error)
}

// DirectoryReader reads every recognized file in a single directory.
type DirectoryReader struct {
	dir      string
	decoders map[string]Decoder
	logger   *slog.Logger
}

var _ Reader = (*DirectoryReader)(nil)

// Option configures a DirectoryReader or FileReader.
type Option func(*readerOptions)

type readerOptions struct {
	decoders []Decoder
	logger   *slog.Logger
}

// WithDecoders replaces the default decoder set.
func WithDecoders(decoders ...Decoder) Option {
	return func(o *readerOptions) {
		o.decoders = decoders
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *readerOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

func applyOptions(opts []Option) *readerOptions {
	o := &readerOptions{
		decoders: DefaultDecoders(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DefaultDecoders returns the built-in decoder set: plain text (.txt, .md)
// and PDF (.pdf).
func DefaultDecoders() []Decoder {
	return []Decoder{NewPlainTextDecoder(), NewPDFDecoder()}
}

func decoderTable(decoders []Decoder) map[string]Decoder {
	table := make(map[string]Decoder)
	for _, d := range decoders {
		for _, ext := range d.Extensions() {
			table[strings.ToLower(ext)] = d
		}
	}
	return table
}

// NewDirectoryReader creates a reader over the given directory.
func NewDirectoryReader(dir string, opts ...Option) (*DirectoryReader, error) {
	if dir == "" {
		return nil, ErrDirectoryRequired
	}
	o := applyOptions(opts)
	return &DirectoryReader{
		dir:      dir,
		decoders: decoderTable(o.decoders),
		logger:   o.logger.With("component", "source-reader"),
	}, nil
}

// Read lists the directory and decodes every recognized file, in directory
// order. Files with no decoder for their extension are skipped silently;
// files whose decode fails are reported and skipped (skip-and-continue).
func (r *DirectoryReader) Read(ctx context.Context) ([]core.Document, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", r.dir, err)
	}

	documents := make([]core.Document, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(r.dir, entry.Name())
		doc, err := decodeFile(path, r.decoders)
		if err != nil {
			r.logger.Warn("skipping file", "path", path, "err", err)
			continue
		}
		documents = append(documents, doc)
	}

	return documents, nil
}

// FileReader reads an explicit list of file paths.
type FileReader struct {
	paths    []string
	decoders map[string]Decoder
	logger   *slog.Logger
}

var _ Reader = (*FileReader)(nil)

// NewFileReader creates a reader over the given file paths.
func NewFileReader(paths []string, opts ...Option) (*FileReader, error) {
	if len(paths) == 0 {
		return nil, ErrPathsRequired
	}
	o := applyOptions(opts)
	return &FileReader{
		paths:    paths,
		decoders: decoderTable(o.decoders),
		logger:   o.logger.With("component", "source-reader"),
	}, nil
}

// Read decodes each path in order. Unsupported or undecodable files are
// reported and skipped, never aborting the batch.
func (r *FileReader) Read(ctx context.Context) ([]core.Document, error) {
	documents := make([]core.Document, 0, len(r.paths))
	for _, path := range r.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := decodeFile(path, r.decoders)
		if err != nil {
			r.logger.Warn("skipping file", "path", path, "err", err)
			continue
		}
		documents = append(documents, doc)
	}
	return documents, nil
}

func decodeFile(path string, decoders map[string]Decoder) (core.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decoder, ok := decoders[ext]
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, path)
	}

	text, err := decoder.Decode(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	return core.Document{
		Text:     text,
		SourceID: filepath.Base(path),
		Metadata: map[string]string{
			"path":   path,
			"format": strings.TrimPrefix(ext, "."),
		},
	}, nil
}
