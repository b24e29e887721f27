package core

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func trimTrailing(records [][]string) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		end := len(r)
		for end > 0 && r[end-1] == "" {
			end--
		}
		out[i] = r[:end]
	}
	return out
}

func TestWriteXLSX_ReadSheet(t *testing.T) {
	tmpl := ImportTemplate()

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, tmpl); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	got, err := ReadSheet("template.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if want := trimTrailing(tmpl.Records()); !reflect.DeepEqual(trimTrailing(got), want) {
		t.Errorf("records =\n%v\nwant\n%v", got, want)
	}

	// Sniffed without an extension.
	if _, err := ReadSheet("upload", buf.Bytes()); err != nil {
		t.Errorf("ReadSheet without extension: %v", err)
	}
}

func TestWriteCSV_ReadSheet(t *testing.T) {
	tmpl := ImportTemplate()

	var buf bytes.Buffer
	if err := WriteSheet(&buf, tmpl, FormatCSV); err != nil {
		t.Fatalf("WriteSheet: %v", err)
	}

	got, err := ReadSheet("template.csv", buf.Bytes())
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if !reflect.DeepEqual(got, tmpl.Records()) {
		t.Errorf("records =\n%v\nwant\n%v", got, tmpl.Records())
	}
}

func TestReadSheet_CSVCleanup(t *testing.T) {
	data := []byte("\xEF\xBB\xBFNO_KK,NAMA_LENGKAP\n3275000000000001,Bud\xffi\n3275000000000002\n")

	got, err := ReadSheet("roster.csv", data)
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}

	if got[0][0] != "NO_KK" {
		t.Errorf("header cell = %q, want byte order mark removed", got[0][0])
	}
	if got[1][1] != "Bud\uFFFDi" {
		t.Errorf("invalid byte = %q, want replacement character", got[1][1])
	}
	if len(got[2]) != 1 {
		t.Errorf("ragged row has %d cells, want 1", len(got[2]))
	}
}

func TestReadSheet_Errors(t *testing.T) {
	big := MaxFileSize
	MaxFileSize = 16
	defer func() { MaxFileSize = big }()

	tests := []struct {
		name string
		file string
		data []byte
		want error
	}{
		{"empty", "a.csv", nil, ErrEmptyFile},
		{"whitespace", "a.csv", []byte(" \n "), ErrEmptyFile},
		{"too large", "a.csv", []byte(strings.Repeat("x", 17)), ErrFileTooLarge},
		{"not a workbook", "a.xlsx", []byte("not zip"), ErrUnreadableFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSheet(tt.file, tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadSheet() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
