package core

import (
	"errors"
	"testing"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(DefaultMaxFileSize)

	tests := []struct {
		name     string
		info     *FileInfo
		wantErr  error
		wantKind ErrorKind
	}{
		{name: "csv accepted", info: &FileInfo{Name: "data.csv", Size: 10}},
		{name: "xlsx accepted", info: &FileInfo{Name: "report.xlsx", Size: 10}},
		{name: "xls accepted", info: &FileInfo{Name: "legacy.xls", Size: 10}},
		{name: "extension is case-insensitive", info: &FileInfo{Name: "DATA.CSV", Size: 10}},
		{name: "exactly at the cap", info: &FileInfo{Name: "big.csv", Size: 52428800}},
		{name: "empty file still passes the gate", info: &FileInfo{Name: "empty.csv", Size: 0}},

		{name: "nil file", info: nil, wantErr: ErrNoFile},
		{name: "blank name", info: &FileInfo{Name: "  ", Size: 10}, wantErr: ErrNoFile},
		{name: "one byte over the cap", info: &FileInfo{Name: "big.csv", Size: 52428801}, wantKind: KindFileTooLarge},
		{name: "unsupported extension", info: &FileInfo{Name: "notes.txt", Size: 10}, wantKind: KindUnsupportedFormat},
		{name: "no extension", info: &FileInfo{Name: "Makefile", Size: 10}, wantKind: KindUnsupportedFormat},
		{name: "size checked before extension", info: &FileInfo{Name: "huge.pdf", Size: 60 << 20}, wantKind: KindFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.info)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantKind != "":
				if got := KindOf(err); got != tt.wantKind {
					t.Errorf("Validate() kind = %q, want %q (err=%v)", got, tt.wantKind, err)
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestValidator_CustomLimit(t *testing.T) {
	v := NewValidator(1024)

	if err := v.Validate(&FileInfo{Name: "a.csv", Size: 1024}); err != nil {
		t.Errorf("Validate() at limit: %v", err)
	}
	if err := v.Validate(&FileInfo{Name: "a.csv", Size: 1025}); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Validate() over limit = %v, want FileTooLarge", err)
	}
	if got := NewValidator(0).MaxSize(); got != DefaultMaxFileSize {
		t.Errorf("NewValidator(0).MaxSize() = %d, want %d", got, DefaultMaxFileSize)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		want   Format
		wantOK bool
	}{
		{"a.csv", FormatCSV, true},
		{"a.b.XLSX", FormatXLSX, true},
		{"old.Xls", FormatXLS, true},
		{"a.xlsm", "", false},
		{"csv", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectFormat(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DetectFormat(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512B"},
		{2048, "2KB"},
		{52428800, "50MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
