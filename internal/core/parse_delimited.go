package core

// parse_delimited.go turns delimited text (CSV, TSV, ...) into a RawSheet.
//
// The field delimiter is sniffed from the first records unless the caller
// pins one. A stray quote inside an unquoted field (5" tall) is kept as
// literal text; an unterminated quoted field is a ParseFailure. Physically
// empty lines
// are skipped; lines made only of delimiters are kept and left for the
// normalizer to discard.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// RawSheet is the unnormalized output of a format parser. Records[0] is the
// header row when present. Rows may be ragged or blank.
type RawSheet struct {
	Records [][]string
}

// Header returns the first record, or nil if there are none.
func (s *RawSheet) Header() []string {
	if s == nil || len(s.Records) == 0 {
		return nil
	}
	return s.Records[0]
}

// delimiterCandidates are tried in order during sniffing; ties go to the
// earlier entry.
var delimiterCandidates = []rune{',', '\t', ';', '|'}

// sniffSampleLines bounds how many records delimiter detection inspects.
const sniffSampleLines = 10

// ParseDelimiter converts a configured delimiter name to a rune.
// "auto" and "" return 0, meaning detect.
func ParseDelimiter(name string) (rune, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return 0, true
	case "comma", ",":
		return ',', true
	case "tab", "\\t", "\t":
		return '\t', true
	case "semicolon", ";":
		return ';', true
	case "pipe", "|":
		return '|', true
	default:
		return 0, false
	}
}

// ParseDelimited parses delimited text. A zero delimiter triggers detection.
func ParseDelimited(data []byte, delimiter rune) (*RawSheet, error) {
	data = sanitizeUTF8(stripBOM(data))

	if delimiter == 0 {
		delimiter = detectDelimiter(data)
	}

	records, err := newDelimitedReader(bytes.NewReader(data), delimiter).ReadAll()
	if errors.Is(err, csv.ErrBareQuote) {
		// Bare quotes are text. The strict pass above still catches
		// unterminated quoted fields in files that have none.
		lazy := newDelimitedReader(bytes.NewReader(data), delimiter)
		lazy.LazyQuotes = true
		records, err = lazy.ReadAll()
	}
	if err != nil {
		return nil, newIngestError(KindParseFailure, err, "error parsing CSV file")
	}

	return &RawSheet{Records: records}, nil
}

func newDelimitedReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	return cr
}

// detectDelimiter picks the candidate that splits the sample into the most
// consistent number of fields, requiring at least two fields per record on
// average. Falls back to a comma.
func detectDelimiter(data []byte) rune {
	best := ','
	bestDelta := -1
	bestAvg := 0.0

	for _, cand := range delimiterCandidates {
		r := newDelimitedReader(bytes.NewReader(data), cand)
		r.LazyQuotes = true

		var counts []int
		for len(counts) < sniffSampleLines {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				continue
			}
			counts = append(counts, len(rec))
		}
		if len(counts) == 0 {
			continue
		}

		total, delta := 0, 0
		for i, n := range counts {
			total += n
			if i > 0 {
				delta += abs(n - counts[i-1])
			}
		}
		avg := float64(total) / float64(len(counts))
		if avg < 2 {
			continue
		}

		if bestDelta < 0 || delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg = cand, delta, avg
		}
	}

	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
