package core

// normalize.go converts raw roster cells into canonical values.
//
// Nothing in here returns an error. A value that cannot be understood is
// replaced by the field's fallback (an enumeration default, or an empty
// date) so one bad cell never costs the whole row.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SerialEpochOffset is the spreadsheet serial number of 1970-01-01.
const SerialEpochOffset = 25569

// maxSerial is the serial number of 9999-12-31.
const maxSerial = 2958465

var (
	isoDateRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// Text serials need five integer digits (1927 onward) so a bare year
	// such as "1980" is not read as a day count.
	serialRegex     = regexp.MustCompile(`^\d{5,}(\.\d+)?$`)
	scientificRegex = regexp.MustCompile(`^\d(\.\d+)?[eE]\+?\d+$`)
	dateSplitRegex  = regexp.MustCompile(`[\s\-/.]+`)
)

// genericDateLayouts are tried before the localized month table.
// Numeric layouts are day-first.
var genericDateLayouts = []string{
	"2 January 2006", "2 Jan 2006", "January 2, 2006", "Jan 2, 2006",
	"2-Jan-2006", "02-Jan-2006",
	"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006",
	"2006-1-2", "2006/01/02", "2006.01.02",
	"20060102",
}

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Normalizer converts raw cells using a Schema.
type Normalizer struct {
	schema *Schema
}

// NewNormalizer creates a normalizer. A nil schema uses DefaultSchema.
func NewNormalizer(schema *Schema) *Normalizer {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Normalizer{schema: schema}
}

// Schema returns the schema in use.
func (n *Normalizer) Schema() *Schema {
	return n.schema
}

// Field returns the first non-missing alias value for f, cleaned and trimmed.
// Returns "" when the row carries none of the aliases.
func (n *Normalizer) Field(row ImportRow, f Field) string {
	v, ok := n.Raw(row, f)
	if !ok {
		return ""
	}
	return cellString(v)
}

// Raw returns the untouched value of the first alias present in the row.
func (n *Normalizer) Raw(row ImportRow, f Field) (any, bool) {
	for _, alias := range n.schema.Aliases[f] {
		if v, ok := row[alias]; ok {
			return v, true
		}
		if v, ok := row[strings.ToLower(alias)]; ok {
			return v, true
		}
	}
	return nil, false
}

// cellString renders a raw cell as trimmed text.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return CleanCell(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Date normalizes a birth date to YYYY-MM-DD.
//
// Accepted shapes, in order: a spreadsheet serial number, an ISO date
// (returned unchanged), and a localized "place, DD MonthName YYYY" string.
// Anything else yields "".
func (n *Normalizer) Date(raw any) string {
	switch v := raw.(type) {
	case float64:
		return serialToDate(v)
	case float32:
		return serialToDate(float64(v))
	case int:
		return serialToDate(float64(v))
	case int64:
		return serialToDate(float64(v))
	}

	s := cellString(raw)
	if s == "" {
		return ""
	}
	if serialRegex.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && f > 0 && f <= maxSerial {
			return serialToDate(f)
		}
	}
	if isoDateRegex.MatchString(s) {
		return s
	}
	_, date := n.PlaceAndDate(s)
	return date
}

// serialToDate converts a spreadsheet serial day count, dropping any time of day.
func serialToDate(serial float64) string {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial > maxSerial {
		return ""
	}
	days := int(math.Floor(serial - SerialEpochOffset))
	return epoch.AddDate(0, 0, days).Format("2006-01-02")
}

// PlaceAndDate splits a combined "place, date" cell.
// Without a comma the whole value is treated as the date. The date part is
// parsed generically first, then with the localized month table.
func (n *Normalizer) PlaceAndDate(raw string) (place, date string) {
	s := strings.TrimSpace(raw)
	rest := s
	if i := strings.Index(s, ","); i >= 0 {
		place = strings.TrimSpace(s[:i])
		rest = strings.TrimSpace(s[i+1:])
	}
	if rest == "" {
		return place, ""
	}
	if isoDateRegex.MatchString(rest) {
		return place, rest
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, rest); err == nil {
			return place, t.Format("2006-01-02")
		}
	}

	return place, n.localizedDate(rest)
}

// localizedDate parses "DD MonthName YYYY" using the schema month table.
func (n *Normalizer) localizedDate(s string) string {
	parts := dateSplitRegex.Split(strings.TrimSpace(s), -1)
	if len(parts) != 3 {
		return ""
	}

	month, ok := n.schema.Months[strings.ToLower(parts[1])]
	if !ok {
		return ""
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return ""
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || len(parts[2]) != 4 {
		return ""
	}

	assembled := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	// Reject impossible days such as 31 Februari.
	if _, err := time.Parse("2006-01-02", assembled); err != nil {
		return ""
	}
	return assembled
}

// Gender classifies a free-text gender value.
func (n *Normalizer) Gender(raw string) Gender {
	s := strings.ToUpper(strings.TrimSpace(raw))

	if len(n.schema.GenderLexicon) > 0 {
		for token, g := range n.schema.GenderLexicon {
			if strings.EqualFold(token, s) {
				return g
			}
		}
		return GenderUnspecified
	}

	if strings.HasPrefix(s, strings.ToUpper(n.schema.FemalePrefix)) {
		return GenderFemale
	}
	return GenderMale
}

// Relationship coerces to the canonical relationship or the schema default.
func (n *Normalizer) Relationship(raw string) Relationship {
	return coerce(raw, Relationships, n.schema.DefaultRelationship)
}

// ChurchStatus coerces to the canonical church status or the schema default.
func (n *Normalizer) ChurchStatus(raw string) ChurchStatus {
	return coerce(raw, ChurchStatuses, n.schema.DefaultChurchStatus)
}

// MaritalStatus coerces to the canonical marital status or unstated.
func (n *Normalizer) MaritalStatus(raw string) MaritalStatus {
	return coerce(raw, MaritalStatuses, MaritalUnstated)
}

// Sector coerces to the canonical sector or the schema default.
func (n *Normalizer) Sector(raw string) Sector {
	return coerce(raw, Sectors, n.schema.DefaultSector)
}

// BloodType coerces to the canonical blood type or unknown.
// An empty cell stays empty.
func (n *Normalizer) BloodType(raw string) BloodType {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return coerce(raw, BloodTypes, BloodUnknown)
}

// coerce trims raw and compares it case-sensitively against allowed.
func coerce[T ~string](raw string, allowed []T, fallback T) T {
	s := strings.TrimSpace(raw)
	for _, v := range allowed {
		if string(v) == s {
			return v
		}
	}
	return fallback
}

// NumericID cleans a household number or NIK cell.
// Spreadsheet scientific notation (3.275E+15) is expanded and inner spaces
// removed. Values that are not numeric are returned trimmed.
func NumericID(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if scientificRegex.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return strconv.FormatFloat(f, 'f', 0, 64)
		}
	}
	return s
}

// ValidNumericID reports whether s is exactly 16 digits.
func ValidNumericID(s string) bool {
	if len(s) != 16 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
