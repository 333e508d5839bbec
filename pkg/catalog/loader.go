package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"perfume-advisor-be/internal/pkg/logger"
)

// ErrMalformedCatalog is returned when the catalog cannot be used at all.
// Individual bad rows are skipped and reported instead.
var ErrMalformedCatalog = errors.New("malformed catalog")

const byteOrderMark = "\ufeff"

// Options controls how a catalog is loaded.
type Options struct {
	// DedupByModel drops every row whose Model was already seen.
	DedupByModel bool
	Logger       logger.ILogger
}

// LoadReport describes what happened to the data rows of a catalog.
type LoadReport struct {
	DataRows     int   `json:"data_rows"`
	Loaded       int   `json:"loaded"`
	Skipped      int   `json:"skipped"`
	Duplicates   int   `json:"duplicates"`
	SkippedLines []int `json:"skipped_lines,omitempty"`
}

type sourceLine struct {
	number int
	text   string
}

type rawRow struct {
	line   int
	fields []string
}

// Load parses a comma separated catalog.
func Load(r io.Reader, opts Options) ([]Item, *LoadReport, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	text := strings.TrimPrefix(string(content), byteOrderMark)

	var lines []sourceLine
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, sourceLine{number: i + 1, text: line})
	}

	if len(lines) < 2 {
		return nil, nil, fmt.Errorf("%w: must contain a header and at least one data row", ErrMalformedCatalog)
	}

	header := parseLine(lines[0].text)

	rows := make([]rawRow, 0, len(lines)-1)
	for _, l := range lines[1:] {
		rows = append(rows, rawRow{line: l.number, fields: parseLine(l.text)})
	}

	items, report := buildItems(header, rows, opts, false)
	logReport(loggerOrNop(opts.Logger), report)

	return items, report, nil
}

// LoadFile opens path and loads it as CSV or XLSX depending on the extension.
func LoadFile(path string, opts Options) ([]Item, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(f, opts)
	default:
		return Load(f, opts)
	}
}

// parseLine splits one catalog line on commas. Every quote toggles quoted mode, wherever it
// appears in the field, and a doubled quote inside quotes is a literal quote. Commas in
// quoted mode belong to the field.
func parseLine(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch ch := runes[i]; {
		case ch == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			field.WriteRune('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(field.String()))
}

// buildItems maps rows onto the header. When padShort is set, rows with fewer cells than the
// header are padded with empty values instead of being skipped (spreadsheets drop trailing blanks).
func buildItems(header []string, rows []rawRow, opts Options, padShort bool) ([]Item, *LoadReport) {
	log := loggerOrNop(opts.Logger)
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], byteOrderMark))
	}

	report := &LoadReport{DataRows: len(rows)}
	items := make([]Item, 0, len(rows))

	for _, row := range rows {
		fields := row.fields
		if padShort && len(fields) < len(header) {
			fields = append(fields, make([]string, len(header)-len(fields))...)
		}
		if len(fields) != len(header) {
			log.Warn("CatalogLoader", "Skipping row with invalid number of values", map[string]interface{}{
				"line":     row.line,
				"expected": len(header),
				"got":      len(fields),
			})
			report.Skipped++
			report.SkippedLines = append(report.SkippedLines, row.line)
			continue
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			values[name] = fields[i]
		}
		items = append(items, itemFromRow(values))
	}

	report.Loaded = len(items)

	if opts.DedupByModel {
		deduped := DedupByModel(items)
		report.Duplicates = len(items) - len(deduped)
		items = deduped
	}

	return items, report
}

func logReport(log logger.ILogger, report *LoadReport) {
	log.Info("CatalogLoader", "Catalog loaded", map[string]interface{}{
		"data_rows":  report.DataRows,
		"loaded":     report.Loaded,
		"skipped":    report.Skipped,
		"duplicates": report.Duplicates,
	})
}

func loggerOrNop(l logger.ILogger) logger.ILogger {
	if l == nil {
		return logger.NewNopLogger()
	}
	return l
}
