package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`="3275000000000001"`, "3275000000000001"},
		{"'3275000000000001", "3275000000000001"},
		{`  "Budi Santoso" `, "Budi Santoso"},
		{"=Sektor A", "Sektor A"},
		{"  Nomor KK  ", "Nomor KK"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{"NO_KK", " Nama Lengkap ", "", "nik", "NIK"})

	want := HeaderIndex{"no_kk": 0, "nama lengkap": 1, "nik": 3}
	if !reflect.DeepEqual(idx, want) {
		t.Errorf("MakeHeaderIndex = %v, want %v", idx, want)
	}
}

func TestFindHeaderRow(t *testing.T) {
	anchors := DefaultSchema().HeaderAnchors

	titled := func(leading int, header []string) [][]string {
		var records [][]string
		for i := 0; i < leading; i++ {
			records = append(records, []string{"Laporan Data Jemaat"})
		}
		return append(records, header, []string{"3275000000000001", "Budi"})
	}

	tests := []struct {
		name    string
		records [][]string
		want    int
	}{
		{"first row", titled(0, []string{"NO_KK", "NAMA_LENGKAP"}), 0},
		{"after title rows", titled(2, []string{"No", "Nomor KK", "Nama Lengkap"}), 2},
		{"case insensitive", titled(1, []string{"nomor kk", "nama"}), 1},
		{"export header", titled(0, []string{"No. Kartu Keluarga", "Nama Lengkap"}), 0},
		{
			"title mentions family card",
			[][]string{
				{"DAFTAR KARTU KELUARGA JEMAAT GKO CIBITUNG"},
				{},
				{"NO_KK", "NAMA_LENGKAP"},
				{"3275000000000001", "Budi"},
			},
			2,
		},
		{"last scanned row", titled(9, []string{"NO_KK"}), 9},
		{"beyond scan window", titled(10, []string{"NO_KK"}), 0},
		{"no anchor", [][]string{{"Nama", "NIK"}, {"Budi", "1"}}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindHeaderRow(tt.records, anchors, DefaultHeaderSearchRows); got != tt.want {
				t.Errorf("FindHeaderRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveRows(t *testing.T) {
	records := [][]string{
		{"Daftar Jemaat GKO"},
		{"NO_KK", "NAMA_LENGKAP", "NIK"},
		{"3275000000000001", "Budi Santoso", "3275123456780001"},
		{"", " ", ""},
		{"3275000000000001", "Siti Aminah"},
	}

	got, err := ResolveRows(records, nil)
	if err != nil {
		t.Fatalf("ResolveRows: %v", err)
	}

	if got.HeaderRow != 1 {
		t.Errorf("HeaderRow = %d, want 1", got.HeaderRow)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}
	if !reflect.DeepEqual(got.Lines, []int{3, 5}) {
		t.Errorf("Lines = %v, want [3 5]", got.Lines)
	}
	if name := got.Rows[1]["nama_lengkap"]; name != "Siti Aminah" {
		t.Errorf("second row name = %v, want Siti Aminah", name)
	}
	if _, ok := got.Rows[1]["nik"]; ok {
		t.Error("short row should not carry a NIK cell")
	}
}

func TestResolveRows_FamilyCardTitle(t *testing.T) {
	records := [][]string{
		{"DAFTAR KARTU KELUARGA JEMAAT GKO CIBITUNG"},
		{},
		{"NO_KK", "NAMA_LENGKAP"},
		{"3275000000000001", "Budi"},
		{"3275000000000001", "Siti"},
	}

	sheet, err := ResolveRows(records, nil)
	if err != nil {
		t.Fatalf("ResolveRows: %v", err)
	}
	if sheet.HeaderRow != 2 {
		t.Errorf("HeaderRow = %d, want 2", sheet.HeaderRow)
	}

	g := GroupSheet(sheet, NewNormalizer(nil), testNow)
	if g.Len() != 1 || g.SkippedRows != 0 {
		t.Errorf("households = %d, skipped = %d, want 1 and 0", g.Len(), g.SkippedRows)
	}
}

func TestResolveRows_Empty(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
	}{
		{"no records", nil},
		{"header only", [][]string{{"NO_KK", "NAMA_LENGKAP"}}},
		{"blank data rows", [][]string{{"NO_KK"}, {""}, {"  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveRows(tt.records, nil)
			if !errors.Is(err, ErrEmptyFile) {
				t.Errorf("ResolveRows() error = %v, want ErrEmptyFile", err)
			}
		})
	}
}
