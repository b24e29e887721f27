package core

// schema.go holds everything that varies between historical versions of the
// roster spreadsheet: column aliases, the header anchor, the localized month
// table and the enumeration fallbacks.
//
// A Schema is passed explicitly to the header resolver and the normalizer, so
// a deployment can load a different profile (see LoadSchema) without touching
// package state.

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field names a canonical roster column.
type Field string

const (
	FieldHouseholdNumber Field = "household_number"
	FieldAddress         Field = "address"
	FieldSector          Field = "sector"
	FieldFullName        Field = "full_name"
	FieldNationalID      Field = "national_id"
	FieldGender          Field = "gender"
	FieldBirthPlace      Field = "birth_place"
	FieldBirthDate       Field = "birth_date"
	FieldBirthPlaceDate  Field = "birth_place_date"
	FieldRelationship    Field = "relationship"
	FieldChurchStatus    Field = "church_status"
	FieldDomicileAddress Field = "domicile_address"
	FieldMaritalStatus   Field = "marital_status"
	FieldPhone           Field = "phone"
	FieldEmail           Field = "email"
	FieldOccupation      Field = "occupation"
	FieldBloodType       Field = "blood_type"
	FieldMinistryNotes   Field = "ministry_notes"
)

// DefaultHeaderSearchRows is how many leading rows are scanned for the header.
const DefaultHeaderSearchRows = 10

// Schema configures header detection and field normalization.
type Schema struct {
	// HeaderAnchors are matched case-insensitively as substrings of header
	// cells. A row with any matching cell is the header row.
	HeaderAnchors []string `yaml:"header_anchors"`

	// HeaderSearchRows bounds the header scan.
	HeaderSearchRows int `yaml:"header_search_rows"`

	// Aliases lists accepted column names per field, in lookup order.
	Aliases map[Field][]string `yaml:"aliases"`

	// Months maps lowercase month names and abbreviations to month numbers.
	Months map[string]int `yaml:"months"`

	// FemalePrefix is the leading letter (after upper-casing) that marks a
	// female gender value. Used only when GenderLexicon is empty.
	FemalePrefix string `yaml:"female_prefix"`

	// GenderLexicon, when set, replaces the prefix heuristic with exact
	// (case-insensitive) token matching. Unknown tokens become unspecified.
	GenderLexicon map[string]Gender `yaml:"gender_lexicon"`

	DefaultRelationship Relationship `yaml:"default_relationship"`
	DefaultChurchStatus ChurchStatus `yaml:"default_church_status"`
	DefaultSector       Sector       `yaml:"default_sector"`
}

// DefaultSchema returns the profile matching every known roster layout:
// the upper-snake import template, the title-case registration export and
// the columns written by this package's own exports.
func DefaultSchema() *Schema {
	return &Schema{
		HeaderAnchors:    []string{"no_kk", "nomor kk", "no. kk", "no. kartu keluarga", "nomor kartu keluarga"},
		HeaderSearchRows: DefaultHeaderSearchRows,
		Aliases: map[Field][]string{
			FieldHouseholdNumber: {"NO_KK", "Nomor KK", "No. KK", "No. Kartu Keluarga"},
			FieldAddress:         {"ALAMAT", "Alamat", "Alamat KK", "Alamat Lengkap"},
			FieldSector:          {"WILAYAH", "Wilayah", "Wilayah Pelayanan", "Sektor"},
			FieldFullName:        {"NAMA_LENGKAP", "Nama Lengkap", "Nama"},
			FieldNationalID:      {"NIK", "Nomor Induk"},
			FieldGender:          {"JENIS_KELAMIN", "Jenis Kelamin"},
			FieldBirthPlace:      {"TEMPAT_LAHIR", "Tempat Lahir"},
			FieldBirthDate:       {"TGL_LAHIR", "Tanggal Lahir", "Tanggal Lahir Full"},
			FieldBirthPlaceDate:  {"Tempat Tanggal Lahir", "Tempat, Tanggal Lahir", "TTL"},
			FieldRelationship:    {"HUBUNGAN", "Status Dalam Keluarga", "Hubungan Keluarga", "Hubungan"},
			FieldChurchStatus:    {"STATUS_GEREJAWI", "Status Gerejawi"},
			FieldDomicileAddress: {"ALAMAT_DOMISILI", "Alamat Domisili"},
			FieldMaritalStatus:   {"STATUS_PERNIKAHAN", "Status Pernikahan", "Status"},
			FieldPhone:           {"NOMOR_TELEPON", "Nomor Telepon", "No. HP"},
			FieldEmail:           {"EMAIL", "E-mail", "Email"},
			FieldOccupation:      {"PEKERJAAN", "Pekerjaan/Usaha", "Pekerjaan"},
			FieldBloodType:       {"GOL_DARAH", "Gol. Darah", "Golongan Darah"},
			FieldMinistryNotes:   {"CATATAN_PELAYANAN", "Catatan Pelayanan"},
		},
		Months: map[string]int{
			"januari": 1, "jan": 1,
			"februari": 2, "feb": 2, "peb": 2,
			"maret": 3, "mar": 3,
			"april": 4, "apr": 4,
			"mei": 5,
			"juni": 6, "jun": 6,
			"juli": 7, "jul": 7,
			"agustus": 8, "agu": 8, "ags": 8, "agt": 8,
			"september": 9, "sep": 9, "sept": 9,
			"oktober": 10, "okt": 10,
			"november": 11, "nov": 11, "nop": 11,
			"desember": 12, "des": 12,
		},
		FemalePrefix:        "P",
		DefaultRelationship: RelationshipOther,
		DefaultChurchStatus: ChurchNone,
		DefaultSector:       SectorUnassigned,
	}
}

// LoadSchema reads a YAML profile and overlays it on DefaultSchema.
// Alias lists in the file replace the defaults for the fields they name.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML profile over DefaultSchema.
func ParseSchema(data []byte) (*Schema, error) {
	s := DefaultSchema()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the schema is usable.
func (s *Schema) Validate() error {
	var errs []string

	if len(s.HeaderAnchors) == 0 {
		errs = append(errs, "header_anchors must not be empty")
	}
	if s.HeaderSearchRows <= 0 {
		errs = append(errs, "header_search_rows must be positive")
	}
	if len(s.Aliases[FieldHouseholdNumber]) == 0 {
		errs = append(errs, "aliases.household_number must not be empty")
	}
	for name, m := range s.Months {
		if m < 1 || m > 12 {
			errs = append(errs, fmt.Sprintf("months.%s (%d) must be 1-12", name, m))
		}
	}
	if len(s.GenderLexicon) == 0 && len(s.FemalePrefix) != 1 {
		errs = append(errs, "female_prefix must be a single letter when gender_lexicon is empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid schema:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
