package core

// validation.go gates candidate files before any parser runs.
//
// Rules are checked in order and the first failure wins:
//  1. A file must be present
//  2. Its size must not exceed the configured maximum
//  3. Its extension (case-insensitive) must be csv, xlsx or xls
//
// The gate only reports; it never touches the file contents.

import (
	"fmt"
	"strings"
)

// DefaultMaxFileSize is the ingestion size cap (50 MiB).
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// Format identifies which parser handles a file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// supportedFormats lists accepted extensions in display order.
var supportedFormats = []Format{FormatCSV, FormatXLSX, FormatXLS}

// IsSpreadsheet reports whether the format is handled by the workbook parser.
func (f Format) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS
}

// Validator checks candidate files against the ingestion rules.
type Validator struct {
	maxSize int64
}

// NewValidator creates a validator with the given size cap.
// A non-positive maxSize falls back to DefaultMaxFileSize.
func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured size cap in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate returns nil if the file may be parsed, or an error describing
// the first rule it breaks.
func (v *Validator) Validate(info *FileInfo) error {
	if info == nil || strings.TrimSpace(info.Name) == "" {
		return ErrNoFile
	}

	if info.Size > v.maxSize {
		return newIngestError(KindFileTooLarge, nil,
			"file too large: %d bytes exceeds the %s limit", info.Size, formatBytes(v.maxSize))
	}

	if _, ok := DetectFormat(info.Name); !ok {
		return newIngestError(KindUnsupportedFormat, nil,
			"unsupported file format %q: please use CSV, XLSX, or XLS files", extension(info.Name))
	}

	return nil
}

// ValidateFile checks info against the default size cap.
func ValidateFile(info *FileInfo) error {
	return NewValidator(DefaultMaxFileSize).Validate(info)
}

// DetectFormat maps a file name to its parser format by extension.
func DetectFormat(name string) (Format, bool) {
	ext := extension(name)
	for _, f := range supportedFormats {
		if string(f) == ext {
			return f, true
		}
	}
	return "", false
}

// extension returns the lowercased text after the last dot, or "" if the
// name has no dot.
func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// formatBytes renders a byte count using binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.0f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}
