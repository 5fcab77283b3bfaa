package servicerequest

import (
	"math"
	"testing"
)

func TestFilter_ExclusionRules(t *testing.T) {
	noLat := report(t, "N1", "Pothole", "Open", "2025-01-01", "")
	noLat.Latitude = nil
	noLon := report(t, "N2", "Pothole", "Open", "2025-01-01", "")
	noLon.Longitude = nil
	nanLat := report(t, "N3", "Pothole", "Open", "2025-01-01", "")
	nanLat.Latitude = ptr(math.NaN())

	records := []RawRecord{
		report(t, "K1", "Pothole", "Open", "2025-01-01", ""),
		report(t, "X1", ExcludedType, "Open", "2025-01-01", ""),
		noLat,
		noLon,
		nanLat,
		report(t, "S1", "Pothole", "Canceled", "2025-01-01", "2025-01-02"),
		report(t, "S2", "Pothole", "Closed", "2025-01-01", "2025-01-02"),
		report(t, "K2", "Pothole", "Completed", "2025-01-01", "2025-01-02"),
	}

	kept, stats := Filter(records)

	if len(kept) != 2 || kept[0].SRNumber != "K1" || kept[1].SRNumber != "K2" {
		t.Fatalf("unexpected survivors: %+v", kept)
	}
	want := FilterStats{Input: 8, ExcludedType: 1, MissingCoordinates: 3, IneligibleStatus: 2, Kept: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestFilter_RuleOrder(t *testing.T) {
	// An excluded type with no coordinates is counted under the first rule only.
	r := report(t, "X1", ExcludedType, "Canceled", "2025-01-01", "")
	r.Latitude = nil

	_, stats := Filter([]RawRecord{r})
	if stats.ExcludedType != 1 || stats.MissingCoordinates != 0 || stats.IneligibleStatus != 0 {
		t.Errorf("stats = %+v, want only ExcludedType counted", stats)
	}
}

func TestNormalize_TitleCasesStreetFields(t *testing.T) {
	r := RawRecord{StreetAddress: "1234 N MILWAUKEE AVE", StreetName: "MILWAUKEE", StreetType: "AVE", StreetDirection: "N"}
	got := Normalize(r)

	if got.StreetAddress != "1234 N Milwaukee Ave" {
		t.Errorf("StreetAddress = %q", got.StreetAddress)
	}
	if got.StreetName != "Milwaukee" || got.StreetType != "Ave" {
		t.Errorf("StreetName/StreetType = %q/%q", got.StreetName, got.StreetType)
	}
	if got.StreetDirection != "N" {
		t.Errorf("StreetDirection must be left as-is, got %q", got.StreetDirection)
	}
	if r.StreetAddress != "1234 N MILWAUKEE AVE" {
		t.Errorf("Normalize must not mutate its input")
	}
}

func TestIsEligibleStatus(t *testing.T) {
	for status, want := range map[string]bool{
		"Open":      true,
		"Completed": true,
		"Canceled":  false,
		"Closed":    false,
		"open":      false,
		"":          false,
	} {
		if got := IsEligibleStatus(status); got != want {
			t.Errorf("IsEligibleStatus(%q) = %v, want %v", status, got, want)
		}
	}
}
