package core

import (
	"context"
	"io"
)

// File is a candidate upload: a name, its declared size and its content.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// Info returns the metadata the validator checks.
func (f File) Info() *FileInfo {
	return &FileInfo{Name: f.Name, Size: f.Size}
}

// IngestOptions tunes the ingestion pipeline. The zero value uses
// DefaultMaxFileSize and delimiter detection.
type IngestOptions struct {
	MaxFileSize int64
	Delimiter   rune // 0 = detect
}

// Ingest runs a file through validation, parsing and normalization.
//
// Reading the content is the only step that observes ctx. On any failure
// no table is returned.
func Ingest(ctx context.Context, f File, opts IngestOptions) (*Table, error) {
	v := NewValidator(opts.MaxFileSize)
	if err := v.Validate(f.Info()); err != nil {
		return nil, err
	}
	format, _ := DetectFormat(f.Name)

	data, err := ReadLimited(ctx, f.Content, v.MaxSize())
	if err != nil {
		return nil, err
	}

	return Parse(data, f.Name, format, opts.Delimiter)
}

// Parse converts in-memory file bytes into a canonical Table.
func Parse(data []byte, fileName string, format Format, delimiter rune) (*Table, error) {
	var (
		raw *RawSheet
		err error
	)
	if format.IsSpreadsheet() {
		raw, err = ParseWorkbook(data, format)
	} else {
		raw, err = ParseDelimited(data, delimiter)
	}
	if err != nil {
		return nil, err
	}

	return Normalize(raw, fileName)
}
