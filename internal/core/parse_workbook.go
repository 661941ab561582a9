package core

// parse_workbook.go reads the first worksheet of an Excel workbook.
//
// XLSX goes through excelize; legacy BIFF .xls goes through extrame/xls.
// Only the first sheet is read. Cells are taken as their raw stored text,
// ragged rows are padded to the widest row with "" and rows that are blank
// in every cell are dropped. A workbook with no sheets, or whose first
// sheet has no content, is a ParseFailure.

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ParseWorkbook parses spreadsheet bytes in the given format.
func ParseWorkbook(data []byte, format Format) (*RawSheet, error) {
	switch format {
	case FormatXLSX:
		return parseXLSX(data)
	case FormatXLS:
		return parseXLS(data)
	default:
		return nil, newIngestError(KindUnsupportedFormat, nil, "%q is not a workbook format", format)
	}
}

func parseXLSX(data []byte) (*RawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newIngestError(KindParseFailure, err, "error reading Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newIngestError(KindParseFailure, nil, "no sheets found in the workbook")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, newIngestError(KindParseFailure, err, "error reading sheet %q", sheets[0])
	}

	return sheetFromRows(rows)
}

// parseXLS recovers from panics in the BIFF decoder, which does not
// validate every record length on malformed input.
func parseXLS(data []byte) (sheet *RawSheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheet = nil
			err = newIngestError(KindParseFailure, fmt.Errorf("%v", r), "error reading Excel file")
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, newIngestError(KindParseFailure, err, "error reading Excel file")
	}
	if wb.NumSheets() == 0 {
		return nil, newIngestError(KindParseFailure, nil, "no sheets found in the workbook")
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, newIngestError(KindParseFailure, nil, "first sheet could not be read")
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}

	return sheetFromRows(rows)
}

// xlsRow returns row i of ws, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the missing row instead of returning nil.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

// sheetFromRows pads rows to a common width and drops blank ones.
func sheetFromRows(rows [][]string) (*RawSheet, error) {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		if isEmptyRow(r) {
			continue
		}
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			r = padded
		}
		records = append(records, r)
	}

	if len(records) == 0 {
		return nil, newIngestError(KindParseFailure, nil, "the first sheet is empty")
	}

	return &RawSheet{Records: records}, nil
}
