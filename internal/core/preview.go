package core

import (
	"context"
	"fmt"
)

// PreviewSummary contains the counts shown before an import is confirmed.
type PreviewSummary struct {
	HeaderRow         int `json:"headerRow"`
	DataRows          int `json:"dataRows"`
	SkippedRows       int `json:"skippedRows"`
	Households        int `json:"households"`
	NewHouseholds     int `json:"newHouseholds"`
	AlreadyRegistered int `json:"alreadyRegistered"`
}

// HouseholdPreview is one grouped household as it would be imported.
type HouseholdPreview struct {
	Number     string `json:"householdNumber"`
	Address    string `json:"address"`
	Sector     Sector `json:"serviceSector"`
	Members    int    `json:"members"`
	Head       string `json:"head,omitempty"`
	Registered bool   `json:"alreadyRegistered"`
}

// PreviewResult is a dry run of ImportFile.
type PreviewResult struct {
	Summary    PreviewSummary     `json:"summary"`
	Households []HouseholdPreview `json:"households"`
	Warnings   []RowWarning       `json:"warnings,omitempty"`
}

// Preview parses and groups a roster file and checks each household number
// against the directory without writing anything.
func (s *Service) Preview(ctx context.Context, fileName string, data []byte) (*PreviewResult, error) {
	records, err := ReadSheet(fileName, data)
	if err != nil {
		return nil, err
	}
	sheet, err := ResolveRows(records, s.Schema())
	if err != nil {
		return nil, err
	}
	grouping := GroupSheet(sheet, s.normalizer, s.now())

	result := &PreviewResult{
		Summary: PreviewSummary{
			HeaderRow:   sheet.HeaderRow,
			DataRows:    len(sheet.Rows),
			SkippedRows: grouping.SkippedRows,
			Households:  grouping.Len(),
		},
		Warnings: grouping.Warnings,
	}

	for _, h := range grouping.Households() {
		exists, err := s.dir.ExistsByHouseholdNumber(ctx, h.Number)
		if err != nil {
			return nil, fmt.Errorf("check household %s: %w", h.Number, err)
		}
		p := HouseholdPreview{
			Number:     h.Number,
			Address:    h.Address,
			Sector:     h.Sector,
			Members:    len(h.Members),
			Registered: exists,
		}
		if head, ok := h.Head(); ok {
			p.Head = head.FullName
		}
		if exists {
			result.Summary.AlreadyRegistered++
		} else {
			result.Summary.NewHouseholds++
		}
		result.Households = append(result.Households, p)
	}
	return result, nil
}
