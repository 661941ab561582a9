package core

import "strings"

// Normalize turns parser output into a canonical Table.
//
// Headers are trimmed and must all be non-empty. At least one data row must
// follow the header. Data rows whose width differs from the header count,
// or whose cells are all "", are dropped; if none survive the file is
// rejected. The returned table shares no slices with raw.
func Normalize(raw *RawSheet, fileName string) (*Table, error) {
	header := raw.Header()
	if len(header) == 0 {
		return nil, newIngestError(KindInvalidHeaders, nil, "header row is missing")
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			return nil, newIngestError(KindInvalidHeaders, nil,
				"invalid or empty column header at position %d", i+1)
		}
	}

	if len(raw.Records) < 2 {
		return nil, newIngestError(KindEmptyFile, nil, "file is empty or has no data rows")
	}

	rows := make([][]string, 0, len(raw.Records)-1)
	for _, rec := range raw.Records[1:] {
		if len(rec) != len(headers) || isEmptyRow(rec) {
			continue
		}
		row := make([]string, len(rec))
		copy(row, rec)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, newIngestError(KindNoValidRows, nil,
			"no valid data rows found: every row was blank or did not have %d columns", len(headers))
	}

	return &Table{
		FileName: fileName,
		Headers:  headers,
		Rows:     rows,
	}, nil
}
