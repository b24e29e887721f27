package core

// sheet.go reads and writes roster files. XLSX goes through excelize;
// CSV through encoding/csv with the same cleanup applied to every upload:
// invalid UTF-8 replaced, byte order mark dropped, ragged rows allowed.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// MaxFileSize is the largest accepted roster file (20MB).
var MaxFileSize int64 = 20 * 1024 * 1024

// Format is a sheet file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat parses a format name. Empty means XLSX.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

var zipMagic = []byte("PK\x03\x04")

// ReadSheet returns the cell matrix of the first worksheet of an XLSX file,
// or of a CSV file. The format is taken from the file name's extension and
// falls back to content sniffing.
func ReadSheet(name string, data []byte) ([][]string, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), MaxFileSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); {
	case ext == ".xlsx" || ext == ".xlsm":
		records, err = readXLSX(data)
	case ext == ".csv" || ext == ".txt":
		records, err = parseCSV(data)
	case bytes.HasPrefix(data, zipMagic):
		records, err = readXLSX(data)
	default:
		records, err = parseCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return records, nil
}

// readXLSX reads raw cell values so date cells arrive as serial numbers.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func parseCSV(data []byte) ([][]string, error) {
	data = sanitizeUTF8(data)
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// WriteSheet writes s in the given format.
func WriteSheet(w io.Writer, s *Sheet, format Format) error {
	if format == FormatCSV {
		return WriteCSV(w, s)
	}
	return WriteXLSX(w, s)
}

// WriteCSV writes s as CSV.
func WriteCSV(w io.Writer, s *Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(s.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes s as a single-sheet workbook with a bold header row.
// Every cell is written as text so 16-digit numbers keep all their digits.
func WriteXLSX(w io.Writer, s *Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := s.Name
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	for i, h := range s.Header {
		if err := sw.SetColWidth(i+1, i+1, columnWidth(h)); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, rec := range s.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		var opts []excelize.RowOpts
		if i == 0 {
			opts = append(opts, excelize.RowOpts{StyleID: bold})
		}
		if err := sw.SetRow(cell, values, opts...); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func columnWidth(header string) float64 {
	w := float64(utf8.RuneCountInString(header)) + 4
	if w < 12 {
		return 12
	}
	return w
}
