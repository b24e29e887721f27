package core

import (
	"strings"
)

// HeaderIndex maps lowercase column names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching. The first occurrence of a
// repeated column name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel formula wrapper (="..."), surrounding
// quotes and the leading apostrophe used to force text cells.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// FindHeaderRow returns the zero-based index of the header row: the first of
// at most maxRows rows with a cell containing one of the anchors
// (case-insensitive). Defaults to 0 when no row qualifies.
func FindHeaderRow(records [][]string, anchors []string, maxRows int) int {
	if maxRows <= 0 {
		maxRows = DefaultHeaderSearchRows
	}
	if len(records) < maxRows {
		maxRows = len(records)
	}

	for i := 0; i < maxRows; i++ {
		for _, cell := range records[i] {
			c := strings.ToLower(CleanCell(cell))
			for _, anchor := range anchors {
				if anchor != "" && strings.Contains(c, strings.ToLower(anchor)) {
					return i
				}
			}
		}
	}
	return 0
}

// SheetRows is a located header plus the data rows beneath it.
type SheetRows struct {
	HeaderRow int         // zero-based index within the sheet
	Header    []string    // cleaned header cells
	Rows      []ImportRow // non-empty data rows keyed by lowercase header
	Lines     []int       // 1-indexed sheet line of each entry in Rows
}

// ResolveRows locates the header and converts the rows beneath it into
// ImportRows. Blank rows are dropped. Returns ErrEmptyFile when no data rows
// remain.
func ResolveRows(records [][]string, schema *Schema) (*SheetRows, error) {
	if schema == nil {
		schema = DefaultSchema()
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx := FindHeaderRow(records, schema.HeaderAnchors, schema.HeaderSearchRows)
	header := records[headerIdx]
	index := MakeHeaderIndex(header)

	out := &SheetRows{HeaderRow: headerIdx, Header: make([]string, len(header))}
	for i, h := range header {
		out.Header[i] = CleanCell(h)
	}

	for i, rec := range records[headerIdx+1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := make(ImportRow, len(index))
		for name, pos := range index {
			if pos < len(rec) {
				row[name] = rec[pos]
			}
		}
		out.Rows = append(out.Rows, row)
		out.Lines = append(out.Lines, headerIdx+i+2)
	}

	if len(out.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	return out, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
