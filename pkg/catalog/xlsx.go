package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first sheet of a workbook exported with the same columns as the CSV catalog.
func LoadXLSX(r io.Reader, opts Options) ([]Item, *LoadReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open workbook: %v", ErrMalformedCatalog, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedCatalog)
	}

	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read sheet %s: %v", ErrMalformedCatalog, sheets[0], err)
	}

	var rows []rawRow
	for i, cells := range sheetRows {
		if isBlankRow(cells) {
			continue
		}
		fields := make([]string, len(cells))
		for j, cell := range cells {
			fields[j] = strings.TrimSpace(cell)
		}
		rows = append(rows, rawRow{line: i + 1, fields: fields})
	}

	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%w: must contain a header and at least one data row", ErrMalformedCatalog)
	}

	log := loggerOrNop(opts.Logger)
	items, report := buildItems(rows[0].fields, rows[1:], opts, true)
	logReport(log, report)

	return items, report, nil
}

func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
