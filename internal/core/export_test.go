package core

import (
	"reflect"
	"testing"
	"time"
)

func sampleHouseholds() []Household {
	registered := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	return []Household{
		{
			ID: "h1", Number: "3275000000000001", Address: "Jl. Contoh No. 1", Sector: SectorA,
			Status: StatusVerified, RegisteredAt: registered,
			Members: []Member{
				{FullName: "Budi Santoso", NationalID: "3275123456780001", BirthPlace: "Jakarta",
					BirthDate: "1980-01-31", Gender: GenderMale, Relationship: RelationshipHead,
					ChurchStatus: ChurchConfirmed, MaritalStatus: MaritalMarried},
				{FullName: "Siti Aminah", NationalID: "3275123456780002", BirthPlace: "Bekasi",
					BirthDate: "1985-11-20", Gender: GenderFemale, Relationship: RelationshipSpouse,
					ChurchStatus: ChurchConfirmed},
				{FullName: "Andi", Relationship: RelationshipChild, Gender: GenderMale, ChurchStatus: ChurchNone},
			},
		},
		{
			ID: "h2", Number: "3275000000000002", Address: "Jl. Melati 9", Sector: SectorUnassigned,
			Status: StatusPending, RegisteredAt: registered,
			Members: []Member{
				{FullName: "Yohanes", BirthDate: "1990-11-03", Gender: GenderMale,
					Relationship: RelationshipHead, ChurchStatus: ChurchBaptized},
			},
		},
	}
}

func column(s *Sheet, name string) []string {
	pos := -1
	for i, h := range s.Header {
		if h == name {
			pos = i
		}
	}
	out := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r[pos]
	}
	return out
}

func TestExportHouseholds_Roster(t *testing.T) {
	sheet, err := ExportHouseholds(sampleHouseholds(), ModeRoster, ExportOptions{}, testNow)
	if err != nil {
		t.Fatalf("ExportHouseholds: %v", err)
	}

	if sheet.Name != "Data Jemaat" {
		t.Errorf("Name = %q", sheet.Name)
	}
	if len(sheet.Rows) != 4 {
		t.Fatalf("rows = %d, want one per member (4)", len(sheet.Rows))
	}

	wantNumbers := []string{"3275000000000001", "3275000000000001", "3275000000000001", "3275000000000002"}
	if got := column(sheet, "No. Kartu Keluarga"); !reflect.DeepEqual(got, wantNumbers) {
		t.Errorf("household numbers = %v", got)
	}
	if got := column(sheet, "Usia"); !reflect.DeepEqual(got, []string{"46", "40", "", "35"}) {
		t.Errorf("ages = %v, want [46 40  35]", got)
	}
	if got := column(sheet, "Tanggal Pendaftaran")[0]; got != "05 Maret 2024" {
		t.Errorf("registration date = %q, want 05 Maret 2024", got)
	}
	for _, r := range sheet.Rows {
		if len(r) != len(RosterColumns) {
			t.Fatalf("row has %d cells, header has %d", len(r), len(RosterColumns))
		}
	}
}

func TestExportHouseholds_Birthday(t *testing.T) {
	sheet, err := ExportHouseholds(sampleHouseholds(), ModeBirthday, ExportOptions{Month: 11}, testNow)
	if err != nil {
		t.Fatalf("ExportHouseholds: %v", err)
	}

	if got := column(sheet, "Nama Lengkap"); !reflect.DeepEqual(got, []string{"Yohanes", "Siti Aminah"}) {
		t.Errorf("names = %v, want sorted by day [Yohanes Siti Aminah]", got)
	}
	if got := column(sheet, "Tanggal"); !reflect.DeepEqual(got, []string{"3 November", "20 November"}) {
		t.Errorf("day labels = %v", got)
	}
	if got := column(sheet, "Ulang Tahun Ke"); !reflect.DeepEqual(got, []string{"36", "41"}) {
		t.Errorf("turning ages = %v, want [36 41]", got)
	}
	if got := column(sheet, "Usia"); !reflect.DeepEqual(got, []string{"35", "40"}) {
		t.Errorf("current ages = %v, want [35 40]", got)
	}
	if got := column(sheet, "Wilayah"); !reflect.DeepEqual(got, []string{string(SectorUnassigned), string(SectorA)}) {
		t.Errorf("sectors = %v", got)
	}
}

func TestExportHouseholds_BirthdayAllMonths(t *testing.T) {
	sheet, err := ExportHouseholds(sampleHouseholds(), ModeBirthday, ExportOptions{}, testNow)
	if err != nil {
		t.Fatalf("ExportHouseholds: %v", err)
	}

	// Members without a birth date are left out.
	want := []string{"Yohanes", "Siti Aminah", "Budi Santoso"}
	if got := column(sheet, "Nama Lengkap"); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestExportHouseholds_Filters(t *testing.T) {
	tests := []struct {
		name string
		opts ExportOptions
		want int
	}{
		{"no filter", ExportOptions{}, 4},
		{"sector", ExportOptions{Sector: SectorA}, 3},
		{"status", ExportOptions{Status: StatusPending}, 1},
		{"query by member name", ExportOptions{Query: "siti"}, 3},
		{"query by household number", ExportOptions{Query: "3275000000000002"}, 1},
		{"query without match", ExportOptions{Query: "tidak ada"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := ExportHouseholds(sampleHouseholds(), ModeRoster, tt.opts, testNow)
			if err != nil {
				t.Fatalf("ExportHouseholds: %v", err)
			}
			if len(sheet.Rows) != tt.want {
				t.Errorf("rows = %d, want %d", len(sheet.Rows), tt.want)
			}
		})
	}
}

func TestExportHouseholds_InvalidInput(t *testing.T) {
	if _, err := ExportHouseholds(nil, ModeBirthday, ExportOptions{Month: 13}, testNow); err == nil {
		t.Error("month 13 accepted")
	}
	if _, err := ExportHouseholds(nil, ExportMode("pdf"), ExportOptions{}, testNow); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestExportHouseholds_RoundTrip(t *testing.T) {
	original := sampleHouseholds()

	sheet, err := ExportHouseholds(original, ModeRoster, ExportOptions{}, testNow)
	if err != nil {
		t.Fatalf("ExportHouseholds: %v", err)
	}
	rows, err := ResolveRows(sheet.Records(), nil)
	if err != nil {
		t.Fatalf("ResolveRows: %v", err)
	}
	g := GroupSheet(rows, NewNormalizer(nil), testNow)

	if g.Len() != len(original) {
		t.Fatalf("households = %d, want %d", g.Len(), len(original))
	}
	for _, want := range original {
		got, ok := g.Get(want.Number)
		if !ok {
			t.Errorf("household %s missing after round trip", want.Number)
			continue
		}
		if got.Address != want.Address || got.Sector != want.Sector || len(got.Members) != len(want.Members) {
			t.Errorf("household %s = (%q, %q, %d members), want (%q, %q, %d members)",
				want.Number, got.Address, got.Sector, len(got.Members),
				want.Address, want.Sector, len(want.Members))
		}
		for i, m := range got.Members {
			w := want.Members[i]
			if m.FullName != w.FullName || m.BirthDate != w.BirthDate || m.Gender != w.Gender || m.Relationship != w.Relationship {
				t.Errorf("member %d = %+v, want %+v", i, m, w)
			}
		}
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		birth       string
		wantAge     int
		wantTurning int
	}{
		{"1980-01-31", 46, 46},
		{"1985-11-20", 40, 41},
		{"2000-10-15", 26, 26},
		{"2000-10-16", 25, 26},
	}

	for _, tt := range tests {
		birth, _ := time.Parse("2006-01-02", tt.birth)
		if got := Age(birth, testNow); got != tt.wantAge {
			t.Errorf("Age(%s) = %d, want %d", tt.birth, got, tt.wantAge)
		}
		if got := TurningAge(birth, testNow); got != tt.wantTurning {
			t.Errorf("TurningAge(%s) = %d, want %d", tt.birth, got, tt.wantTurning)
		}
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		mode ExportMode
		opts ExportOptions
		want string
	}{
		{ModeRoster, ExportOptions{}, "Laporan_Jemaat_2026-10-15"},
		{ModeBirthday, ExportOptions{Month: 8}, "Jemaat_Ultah_Agustus_2026"},
		{ModeBirthday, ExportOptions{}, "Jemaat_Ultah_Semua_Bulan_2026"},
	}

	for _, tt := range tests {
		if got := ExportFileName(tt.mode, tt.opts, testNow); got != tt.want {
			t.Errorf("ExportFileName(%s, %+v) = %q, want %q", tt.mode, tt.opts, got, tt.want)
		}
	}
}
