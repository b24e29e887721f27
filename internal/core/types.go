// Package core provides the business logic for household roster import and export.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"fmt"
	"time"
)

// Gender is the normalized gender of a member.
type Gender string

const (
	GenderMale        Gender = "Laki-laki"
	GenderFemale      Gender = "Perempuan"
	GenderUnspecified Gender = ""
)

// Relationship is a member's position within the household.
type Relationship string

const (
	RelationshipHead   Relationship = "Kepala Keluarga"
	RelationshipSpouse Relationship = "Istri"
	RelationshipChild  Relationship = "Anak"
	RelationshipParent Relationship = "Orang Tua"
	RelationshipOther  Relationship = "Lainnya"
)

// Relationships lists the canonical relationship values.
var Relationships = []Relationship{
	RelationshipHead, RelationshipSpouse, RelationshipChild, RelationshipParent, RelationshipOther,
}

// ChurchStatus records baptism and confirmation.
type ChurchStatus string

const (
	ChurchBaptized  ChurchStatus = "Baptis"
	ChurchConfirmed ChurchStatus = "Sidi"
	ChurchBoth      ChurchStatus = "Baptis & Sidi"
	ChurchNone      ChurchStatus = "Belum"
)

// ChurchStatuses lists the canonical church status values.
var ChurchStatuses = []ChurchStatus{ChurchBaptized, ChurchConfirmed, ChurchBoth, ChurchNone}

// MaritalStatus is optional; the empty value means not provided.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "Belum Menikah"
	MaritalMarried  MaritalStatus = "Menikah"
	MaritalWidow    MaritalStatus = "Janda"
	MaritalWidower  MaritalStatus = "Duda"
	MaritalUnstated MaritalStatus = ""
)

// MaritalStatuses lists the canonical marital status values.
var MaritalStatuses = []MaritalStatus{MaritalSingle, MaritalMarried, MaritalWidow, MaritalWidower}

// BloodType is optional; BloodUnknown is the fallback.
type BloodType string

const (
	BloodA       BloodType = "A"
	BloodB       BloodType = "B"
	BloodAB      BloodType = "AB"
	BloodO       BloodType = "O"
	BloodUnknown BloodType = "-"
)

// BloodTypes lists the canonical blood type values.
var BloodTypes = []BloodType{BloodA, BloodB, BloodAB, BloodO, BloodUnknown}

// Sector is the service sector a household belongs to.
type Sector string

const (
	SectorA          Sector = "Sektor A"
	SectorB          Sector = "Sektor B"
	SectorC          Sector = "Sektor C"
	SectorD          Sector = "Sektor D"
	SectorE          Sector = "Sektor E"
	SectorUnassigned Sector = "Belum ada Sektor Wilayah"
)

// Sectors lists the canonical sector values.
var Sectors = []Sector{SectorA, SectorB, SectorC, SectorD, SectorE, SectorUnassigned}

// VerificationStatus is the administrative state of a household registration.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "Pending"
	StatusVerified VerificationStatus = "Verified"
	StatusRejected VerificationStatus = "Rejected"
)

// Valid reports whether s is one of the known statuses.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// Member is one person within a household.
type Member struct {
	ID           string       `json:"id,omitempty"`
	HouseholdID  string       `json:"householdId,omitempty"`
	FullName     string       `json:"fullName"`
	NationalID   string       `json:"nationalId"`
	BirthPlace   string       `json:"birthPlace"`
	BirthDate    string       `json:"birthDate"` // YYYY-MM-DD or empty
	Gender       Gender       `json:"gender"`
	Relationship Relationship `json:"relationship"`
	ChurchStatus ChurchStatus `json:"churchStatus"`

	DomicileAddress string        `json:"domicileAddress,omitempty"`
	MaritalStatus   MaritalStatus `json:"maritalStatus,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	Email           string        `json:"email,omitempty"`
	Occupation      string        `json:"occupation,omitempty"`
	BloodType       BloodType     `json:"bloodType,omitempty"`
	MinistryNotes   string        `json:"ministryNotes,omitempty"`
}

// IsHead reports whether the member is the head of the household.
func (m Member) IsHead() bool {
	return m.Relationship == RelationshipHead
}

// Household is one family unit keyed by its household number.
type Household struct {
	ID           string             `json:"id,omitempty"`
	Number       string             `json:"householdNumber"`
	Address      string             `json:"address"`
	Sector       Sector             `json:"serviceSector"`
	Status       VerificationStatus `json:"verificationStatus"`
	RegisteredAt time.Time          `json:"registrationTimestamp"`
	VerifiedAt   *time.Time         `json:"verifiedAt,omitempty"`
	VerifiedBy   string             `json:"verifiedBy,omitempty"`
	Members      []Member           `json:"members"`
}

// Head returns the first member holding the Head relationship.
func (h *Household) Head() (Member, bool) {
	for _, m := range h.Members {
		if m.IsHead() {
			return m, true
		}
	}
	return Member{}, false
}

// HouseholdPatch carries the household-level fields an update may change.
// Nil fields are left untouched.
type HouseholdPatch struct {
	Number  *string             `json:"householdNumber,omitempty"`
	Address *string             `json:"address,omitempty"`
	Sector  *Sector             `json:"serviceSector,omitempty"`
	Status  *VerificationStatus `json:"verificationStatus,omitempty"`
}

// ImportRow is one sheet row keyed by the header text the sheet used.
// Values are strings from CSV/XLSX readers; library callers may pass numbers.
type ImportRow map[string]any

// RowWarning records data that was dropped or defaulted during grouping.
type RowWarning struct {
	Line    int    `json:"line"` // 1-indexed sheet line
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

func (w RowWarning) String() string {
	if w.Key != "" {
		return fmt.Sprintf("line %d (%s): %s", w.Line, w.Key, w.Message)
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// HouseholdFailure is one household that could not be created.
type HouseholdFailure struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Tally is the per-run result of an import.
type Tally struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Failures  []HouseholdFailure `json:"failures,omitempty"`
	Warnings  []RowWarning       `json:"warnings,omitempty"`
}

func (t *Tally) succeed() {
	t.Succeeded++
}

func (t *Tally) fail(key, message string) {
	t.Failed++
	t.Failures = append(t.Failures, HouseholdFailure{Key: key, Message: message})
}

// Summary returns the end-of-run message shown to the operator.
func (t *Tally) Summary() string {
	return fmt.Sprintf("Import selesai. Sukses: %d. Gagal: %d.", t.Succeeded, t.Failed)
}

// ImportResult is returned by Service.ImportFile.
type ImportResult struct {
	RunID      string        `json:"runId"`
	FileName   string        `json:"fileName"`
	HeaderRow  int           `json:"headerRow"`
	DataRows   int           `json:"dataRows"`
	Households int           `json:"households"`
	Tally      *Tally        `json:"tally"`
	Summary    string        `json:"summary"`
	Duration   time.Duration `json:"duration"`
}
