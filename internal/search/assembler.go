package search

import (
	"time"

	repos "github.com/platewatch/platewatch-backend/internal/data/repos/inspections"
)

type ViolationEntry struct {
	ViolationCode        string `json:"violation_code"`
	ViolationDescription string `json:"violation_description"`
}

type InspectionBlock struct {
	InspectionDate string           `json:"inspection_date"`
	CriticalFlag   string           `json:"critical_flag"`
	Grade          string           `json:"grade"`
	InspectionType string           `json:"inspection_type"`
	Violations     []ViolationEntry `json:"violations"`
}

type EstablishmentResult struct {
	EntityID    string            `json:"entity_id"`
	Name        string            `json:"name"`
	Boro        string            `json:"boro"`
	Building    string            `json:"building"`
	Street      string            `json:"street"`
	Zipcode     string            `json:"zipcode"`
	Phone       string            `json:"phone"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Cuisine     string            `json:"cuisine"`
	Inspections []InspectionBlock `json:"inspections"`
}

type violationKey struct {
	entityID string
	date     string
	code     string
	desc     string
}

// Assemble folds the rank-ordered flat join rows into one document per
// establishment: first-seen order for establishments and inspection dates,
// violations appended first-seen with exact duplicates dropped. A row without
// an inspection date contributes only establishment fields; a row without a
// violation code contributes no violation entry.
func Assemble(rows []repos.SearchRow) []EstablishmentResult {
	results := make([]EstablishmentResult, 0, len(rows))
	estIndex := make(map[string]int)
	inspIndex := make(map[string]map[string]int)
	seenViolations := make(map[violationKey]struct{})

	for _, row := range rows {
		if row.EntityID == "" {
			continue
		}

		idx, ok := estIndex[row.EntityID]
		if !ok {
			idx = len(results)
			estIndex[row.EntityID] = idx
			inspIndex[row.EntityID] = make(map[string]int)
			results = append(results, EstablishmentResult{
				EntityID:    row.EntityID,
				Name:        row.Name,
				Boro:        row.Boro,
				Building:    row.Building,
				Street:      row.Street,
				Zipcode:     row.Zipcode,
				Phone:       row.Phone,
				Latitude:    row.Latitude,
				Longitude:   row.Longitude,
				Cuisine:     row.Cuisine,
				Inspections: []InspectionBlock{},
			})
		}

		if row.InspectionDate == nil {
			continue
		}
		dateStr := row.InspectionDate.Format(time.DateOnly)

		blockIdx, ok := inspIndex[row.EntityID][dateStr]
		if !ok {
			blockIdx = len(results[idx].Inspections)
			inspIndex[row.EntityID][dateStr] = blockIdx
			results[idx].Inspections = append(results[idx].Inspections, InspectionBlock{
				InspectionDate: dateStr,
				CriticalFlag:   strOrEmpty(row.CriticalFlag),
				Grade:          strOrEmpty(row.Grade),
				InspectionType: strOrEmpty(row.InspectionType),
				Violations:     []ViolationEntry{},
			})
		}

		if row.ViolationCode == nil || *row.ViolationCode == "" {
			continue
		}
		vk := violationKey{
			entityID: row.EntityID,
			date:     dateStr,
			code:     *row.ViolationCode,
			desc:     strOrEmpty(row.ViolationDesc),
		}
		if _, dup := seenViolations[vk]; dup {
			continue
		}
		seenViolations[vk] = struct{}{}
		results[idx].Inspections[blockIdx].Violations = append(
			results[idx].Inspections[blockIdx].Violations,
			ViolationEntry{
				ViolationCode:        *row.ViolationCode,
				ViolationDescription: strOrEmpty(row.ViolationDesc),
			},
		)
	}

	return results
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
