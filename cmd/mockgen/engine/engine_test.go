package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"csr-pipeline/internal/extract"
	"csr-pipeline/internal/servicerequest"
)

func TestGenerate_ClustersAreResolvable(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records, mapping := Generate(GeneratorConfig{Scenario: "noisy", Distribution: "weibull", Count: 50, Now: now, Seed: 7})

	if len(records) < 55 {
		t.Fatalf("expected at least one report per issue plus noise, got %d", len(records))
	}

	result, err := servicerequest.Process(context.Background(), records, mapping, servicerequest.Options{Today: now})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	r := result.Report
	if r.Filter.ExcludedType != 1 || r.Filter.MissingCoordinates != 1 || r.Filter.IneligibleStatus != 2 {
		t.Errorf("unexpected filter stats: %+v", r.Filter)
	}
	if r.UnmappedTypes != 1 {
		t.Errorf("unmapped = %d, want 1", r.UnmappedTypes)
	}
	if r.Clusters != 50 {
		t.Errorf("clusters = %d, want 50", r.Clusters)
	}
	for _, rec := range result.Resolved {
		if rec.Status == servicerequest.StatusCompleted && rec.ClosedDate == nil {
			t.Errorf("%s is Completed without a closed date", rec.SRNumber)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Count: 20, Now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Seed: 42}
	a, _ := Generate(cfg)
	b, _ := Generate(cfg)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].SRNumber != b[i].SRNumber || !a[i].CreatedDate.Equal(b[i].CreatedDate) {
			t.Fatalf("record %d differs", i)
		}
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	records, mapping := Generate(GeneratorConfig{Count: 5, Seed: 1})
	if err := Save(dir, records, mapping); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := extract.LoadRawCSV(filepath.Join(dir, "csr_raw.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(records) {
		t.Errorf("raw rows = %d, want %d", len(got), len(records))
	}

	f, err := os.Open(filepath.Join(dir, "sr_categories.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	loaded, err := servicerequest.LoadCategoryMapping(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(srTypes) {
		t.Errorf("mapping size = %d, want %d", len(loaded), len(srTypes))
	}
}
