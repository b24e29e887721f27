package core

import (
	"fmt"
	"strings"
	"time"
)

// Grouping is the result of folding flat rows into households.
type Grouping struct {
	households map[string]*Household
	order      []string

	// Warnings lists rows that were skipped and fields that were dropped or
	// defaulted. Grouping never fails.
	Warnings []RowWarning

	// SkippedRows counts rows without a household number.
	SkippedRows int
}

// Len returns the number of households.
func (g *Grouping) Len() int {
	return len(g.order)
}

// Keys returns household numbers in first-seen order.
func (g *Grouping) Keys() []string {
	return append([]string(nil), g.order...)
}

// Get returns the household for a key.
func (g *Grouping) Get(key string) (*Household, bool) {
	h, ok := g.households[key]
	return h, ok
}

// Households returns households in first-seen order.
func (g *Grouping) Households() []*Household {
	out := make([]*Household, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.households[k])
	}
	return out
}

// GroupHouseholds folds rows into households keyed by household number.
// Row i is reported as sheet line i+1 in warnings.
func GroupHouseholds(rows []ImportRow, n *Normalizer, now time.Time) *Grouping {
	return groupRows(rows, nil, n, now)
}

// GroupSheet is GroupHouseholds for rows produced by ResolveRows, so warnings
// carry the real sheet line numbers.
func GroupSheet(sheet *SheetRows, n *Normalizer, now time.Time) *Grouping {
	return groupRows(sheet.Rows, sheet.Lines, n, now)
}

func groupRows(rows []ImportRow, lines []int, n *Normalizer, now time.Time) *Grouping {
	if n == nil {
		n = NewNormalizer(nil)
	}
	g := &Grouping{households: make(map[string]*Household)}

	for i, row := range rows {
		line := i + 1
		if i < len(lines) {
			line = lines[i]
		}
		warn := func(key, format string, args ...any) {
			g.Warnings = append(g.Warnings, RowWarning{Line: line, Key: key, Message: fmt.Sprintf(format, args...)})
		}

		key := NumericID(n.Field(row, FieldHouseholdNumber))
		if key == "" {
			g.SkippedRows++
			warn("", "row skipped: missing household number")
			continue
		}

		h, seen := g.households[key]
		if !seen {
			if !ValidNumericID(key) {
				warn(key, "household number is not 16 digits")
			}
			rawSector := n.Field(row, FieldSector)
			h = &Household{
				Number:       key,
				Address:      n.Field(row, FieldAddress),
				Sector:       n.Sector(rawSector),
				Status:       StatusVerified,
				RegisteredAt: now,
			}
			if rawSector != "" && string(h.Sector) != rawSector {
				warn(key, "sector %q replaced with %q", rawSector, h.Sector)
			}
			g.households[key] = h
			g.order = append(g.order, key)
		}

		h.Members = append(h.Members, buildMember(row, n, func(format string, args ...any) {
			warn(key, format, args...)
		}))
	}

	return g
}

// buildMember normalizes the member-level fields of one row.
func buildMember(row ImportRow, n *Normalizer, warn func(format string, args ...any)) Member {
	m := Member{
		FullName:        n.Field(row, FieldFullName),
		NationalID:      NumericID(n.Field(row, FieldNationalID)),
		BirthPlace:      n.Field(row, FieldBirthPlace),
		Gender:          n.Gender(n.Field(row, FieldGender)),
		DomicileAddress: n.Field(row, FieldDomicileAddress),
		Phone:           n.Field(row, FieldPhone),
		Email:           n.Field(row, FieldEmail),
		Occupation:      n.Field(row, FieldOccupation),
		MinistryNotes:   n.Field(row, FieldMinistryNotes),
	}
	if m.DomicileAddress == "" {
		m.DomicileAddress = n.Field(row, FieldAddress)
	}

	if m.NationalID != "" && !ValidNumericID(m.NationalID) {
		warn("NIK of %q is not 16 digits", m.FullName)
	}

	rawDate, hasDate := n.Raw(row, FieldBirthDate)
	if hasDate && cellString(rawDate) != "" {
		m.BirthDate = n.Date(rawDate)
		if m.BirthDate == "" {
			warn("birth date %q of %q not recognized", cellString(rawDate), m.FullName)
		}
	}
	if combined := n.Field(row, FieldBirthPlaceDate); combined != "" {
		place, date := n.PlaceAndDate(combined)
		if m.BirthPlace == "" {
			m.BirthPlace = place
		}
		if m.BirthDate == "" {
			m.BirthDate = date
			if date == "" {
				warn("birth date %q of %q not recognized", combined, m.FullName)
			}
		}
	}

	rawRel := n.Field(row, FieldRelationship)
	m.Relationship = n.Relationship(rawRel)
	if rawRel != "" && string(m.Relationship) != rawRel {
		warn("relationship %q replaced with %q", rawRel, m.Relationship)
	}

	rawChurch := n.Field(row, FieldChurchStatus)
	m.ChurchStatus = n.ChurchStatus(rawChurch)
	if rawChurch != "" && string(m.ChurchStatus) != rawChurch {
		warn("church status %q replaced with %q", rawChurch, m.ChurchStatus)
	}

	rawMarital := n.Field(row, FieldMaritalStatus)
	m.MaritalStatus = n.MaritalStatus(rawMarital)
	if rawMarital != "" && m.MaritalStatus == MaritalUnstated {
		warn("marital status %q dropped", rawMarital)
	}

	m.BloodType = n.BloodType(n.Field(row, FieldBloodType))

	if g := n.Field(row, FieldGender); g != "" && m.Gender == GenderUnspecified {
		warn("gender %q not recognized", strings.TrimSpace(g))
	}

	return m
}
