package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ExportMode selects the export column set.
type ExportMode string

const (
	ModeRoster   ExportMode = "roster"
	ModeBirthday ExportMode = "birthday"
)

// ParseExportMode parses a mode name. Empty means roster.
func ParseExportMode(s string) (ExportMode, error) {
	switch ExportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRoster:
		return ModeRoster, nil
	case ModeBirthday:
		return ModeBirthday, nil
	}
	return "", fmt.Errorf("unknown export mode %q", s)
}

// MonthNames are the Indonesian month names, January first.
var MonthNames = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// RosterColumns is the full-roster header.
var RosterColumns = []string{
	"No. Kartu Keluarga", "Wilayah Pelayanan", "Alamat Lengkap",
	"Nama Lengkap", "NIK", "Hubungan Keluarga", "Jenis Kelamin",
	"Tempat Lahir", "Tanggal Lahir", "Usia", "Status Gerejawi",
	"Status Pernikahan", "Alamat Domisili", "Nomor Telepon", "Email",
	"Pekerjaan", "Golongan Darah", "Catatan Pelayanan",
	"Status Verifikasi", "Tanggal Pendaftaran",
}

// BirthdayColumns is the birthday-report header.
var BirthdayColumns = []string{
	"Tanggal", "Nama Lengkap", "Usia", "Ulang Tahun Ke", "Jenis Kelamin",
	"Wilayah", "No. KK", "Hubungan", "Tanggal Lahir Full",
}

// ExportOptions filters the households included in an export.
type ExportOptions struct {
	Month  int                // birthday mode only; 1-12, 0 for all months
	Sector Sector             // empty for all sectors
	Status VerificationStatus // empty for all statuses
	Query  string             // matches household number, member name or NIK
}

// Matches reports whether h passes the household-level filters.
func (o ExportOptions) Matches(h *Household) bool {
	if o.Sector != "" && h.Sector != o.Sector {
		return false
	}
	if o.Status != "" && h.Status != o.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(o.Query))
	if q == "" {
		return true
	}
	if strings.Contains(h.Number, q) || strings.Contains(strings.ToLower(h.Address), q) {
		return true
	}
	for _, m := range h.Members {
		if strings.Contains(strings.ToLower(m.FullName), q) || strings.Contains(m.NationalID, q) {
			return true
		}
	}
	return false
}

// Sheet is a named table of string cells, ready to be written as XLSX or CSV.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Records returns the header followed by the rows.
func (s *Sheet) Records() [][]string {
	out := make([][]string, 0, len(s.Rows)+1)
	out = append(out, s.Header)
	return append(out, s.Rows...)
}

// ExportHouseholds flattens households into one row per member.
// now fixes the reference date for ages.
func ExportHouseholds(households []Household, mode ExportMode, opts ExportOptions, now time.Time) (*Sheet, error) {
	switch mode {
	case ModeRoster, "":
		return exportRoster(households, opts, now), nil
	case ModeBirthday:
		if opts.Month < 0 || opts.Month > 12 {
			return nil, fmt.Errorf("month %d out of range", opts.Month)
		}
		return exportBirthdays(households, opts, now), nil
	}
	return nil, fmt.Errorf("unknown export mode %q", mode)
}

func exportRoster(households []Household, opts ExportOptions, now time.Time) *Sheet {
	s := &Sheet{Name: "Data Jemaat", Header: RosterColumns}

	for i := range households {
		h := &households[i]
		if !opts.Matches(h) {
			continue
		}
		for _, m := range h.Members {
			s.Rows = append(s.Rows, []string{
				h.Number,
				string(h.Sector),
				h.Address,
				m.FullName,
				m.NationalID,
				string(m.Relationship),
				string(m.Gender),
				m.BirthPlace,
				m.BirthDate,
				ageCell(m.BirthDate, now),
				string(m.ChurchStatus),
				string(m.MaritalStatus),
				m.DomicileAddress,
				m.Phone,
				m.Email,
				m.Occupation,
				string(m.BloodType),
				m.MinistryNotes,
				string(h.Status),
				FormatLongDate(h.RegisteredAt),
			})
		}
	}
	return s
}

type birthdayRow struct {
	day   int
	cells []string
}

func exportBirthdays(households []Household, opts ExportOptions, now time.Time) *Sheet {
	s := &Sheet{Name: "Ulang Tahun", Header: BirthdayColumns}

	var rows []birthdayRow
	for i := range households {
		h := &households[i]
		if !opts.Matches(h) {
			continue
		}
		for _, m := range h.Members {
			birth, ok := parseISODate(m.BirthDate)
			if !ok {
				continue
			}
			if opts.Month != 0 && int(birth.Month()) != opts.Month {
				continue
			}
			rows = append(rows, birthdayRow{
				day: birth.Day(),
				cells: []string{
					fmt.Sprintf("%d %s", birth.Day(), MonthNames[birth.Month()-1]),
					m.FullName,
					strconv.Itoa(Age(birth, now)),
					strconv.Itoa(TurningAge(birth, now)),
					string(m.Gender),
					string(h.Sector),
					h.Number,
					string(m.Relationship),
					m.BirthDate,
				},
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].day < rows[j].day })
	for _, r := range rows {
		s.Rows = append(s.Rows, r.cells)
	}
	return s
}

// Age returns completed years at now.
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// TurningAge returns the age reached during now's calendar year.
func TurningAge(birth, now time.Time) int {
	return now.Year() - birth.Year()
}

func ageCell(birthDate string, now time.Time) string {
	birth, ok := parseISODate(birthDate)
	if !ok {
		return ""
	}
	return strconv.Itoa(Age(birth, now))
}

func parseISODate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

// FormatLongDate renders "02 Januari 2006". The zero time renders as "".
func FormatLongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), MonthNames[t.Month()-1], t.Year())
}

// ExportFileName returns the download name for an export, without extension.
func ExportFileName(mode ExportMode, opts ExportOptions, now time.Time) string {
	if mode == ModeBirthday {
		month := "Semua_Bulan"
		if opts.Month >= 1 && opts.Month <= 12 {
			month = MonthNames[opts.Month-1]
		}
		return fmt.Sprintf("Jemaat_Ultah_%s_%d", month, now.Year())
	}
	return "Laporan_Jemaat_" + now.Format("2006-01-02")
}
