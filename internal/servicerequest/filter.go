package servicerequest

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExcludedType is dropped unconditionally; the complaints are not tied to a street location.
const ExcludedType = "Aircraft Noise Complaint"

// FilterStats counts how many records each exclusion rule removed.
type FilterStats struct {
	Input              int `json:"input"`
	ExcludedType       int `json:"excludedType"`
	MissingCoordinates int `json:"missingCoordinates"`
	IneligibleStatus   int `json:"ineligibleStatus"`
	Kept               int `json:"kept"`
}

// IsEligibleStatus reports whether a source status code takes part in resolution.
func IsEligibleStatus(status string) bool {
	return status == string(StatusOpen) || status == string(StatusCompleted)
}

// Filter applies the exclusion rules in order and normalizes the survivors.
// Input order is preserved since it drives tie-breaking downstream.
func Filter(records []RawRecord) ([]RawRecord, FilterStats) {
	stats := FilterStats{Input: len(records)}
	caser := cases.Title(language.English)

	kept := make([]RawRecord, 0, len(records))
	for _, r := range records {
		switch {
		case r.SRType == ExcludedType:
			stats.ExcludedType++
		case !hasCoordinate(r.Latitude) || !hasCoordinate(r.Longitude):
			stats.MissingCoordinates++
		case !IsEligibleStatus(r.Status):
			stats.IneligibleStatus++
		default:
			kept = append(kept, normalize(caser, r))
		}
	}

	stats.Kept = len(kept)
	return kept, stats
}

// Normalize title-cases the free-text street fields of a record.
func Normalize(r RawRecord) RawRecord {
	return normalize(cases.Title(language.English), r)
}

func normalize(caser cases.Caser, r RawRecord) RawRecord {
	r.StreetAddress = caser.String(r.StreetAddress)
	r.StreetName = caser.String(r.StreetName)
	r.StreetType = caser.String(r.StreetType)
	return r
}

func hasCoordinate(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}
