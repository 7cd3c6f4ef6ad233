// Package extractor converts uploaded resume documents into plain text.
package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var ErrUnsupportedFormat = errors.New("unsupported file type")

// ExtractionError is returned when a parser cannot process a document.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ParseFormat accepts a bare tag ("pdf") or an extension (".PDF").
func ParseFormat(tag string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(tag, ".")) {
	case string(FormatPDF):
		return FormatPDF, nil
	case string(FormatDOCX):
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// TextExtractor reads the text of a document already materialized on disk.
type TextExtractor interface {
	Format() Format
	ExtractFile(path string) (string, error)
}

// Document is either a path in storage or raw bytes, tagged with its format.
// Data takes precedence when both are set.
type Document struct {
	Format Format
	Path   string
	Data   []byte
}

type Extractor struct {
	extractors map[Format]TextExtractor
	tempDir    string
}

type Option func(*Extractor)

func WithTempDir(dir string) Option {
	return func(e *Extractor) {
		e.tempDir = dir
	}
}

// WithExtractor registers te for its format, replacing any existing variant.
func WithExtractor(te TextExtractor) Option {
	return func(e *Extractor) {
		e.extractors[te.Format()] = te
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		extractors: map[Format]TextExtractor{},
	}
	for _, te := range []TextExtractor{PDFExtractor{}, DocxExtractor{}} {
		e.extractors[te.Format()] = te
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tempDir == "" {
		e.tempDir = os.TempDir()
	}
	return e
}

func (e *Extractor) Extract(doc Document) (string, error) {
	te, ok := e.extractors[doc.Format]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)
	}
	if doc.Data != nil {
		return e.extractBytes(te, doc.Data)
	}
	return extractFile(te, doc.Path)
}

// ExtractPath derives the format from the file extension.
func (e *Extractor) ExtractPath(path string) (string, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return "", err
	}
	return e.Extract(Document{Format: format, Path: path})
}

func (e *Extractor) ExtractBytes(format Format, data []byte) (string, error) {
	if data == nil {
		data = []byte{}
	}
	return e.Extract(Document{Format: format, Data: data})
}

// extractBytes materializes data in a per-call temp file that is removed
// before returning, whatever the outcome.
func (e *Extractor) extractBytes(te TextExtractor, data []byte) (string, error) {
	name := filepath.Join(e.tempDir, fmt.Sprintf("resume-%s.%s", uuid.NewString(), te.Format()))
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(name)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return extractFile(te, name)
}

// extractFile runs te and turns errors and parser panics into ExtractionError.
func extractFile(te TextExtractor, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Format: te.Format(), Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	text, err = te.ExtractFile(path)
	if err != nil {
		var extractionErr *ExtractionError
		if errors.As(err, &extractionErr) {
			return "", err
		}
		return "", &ExtractionError{Format: te.Format(), Err: err}
	}
	return text, nil
}
