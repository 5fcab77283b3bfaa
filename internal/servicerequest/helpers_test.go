package servicerequest

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	t.Fatalf("bad test timestamp %q", s)
	return time.Time{}
}

func ptr[T any](v T) *T { return &v }

// report builds a raw record at fixed coordinates; closed may be empty.
func report(t *testing.T, id, srType, status, created, closed string) RawRecord {
	t.Helper()
	r := RawRecord{
		SRNumber:      id,
		SRType:        srType,
		Status:        status,
		CreatedDate:   mustTime(t, created),
		StreetAddress: "100 N State St",
		CommunityArea: ptr(32),
		Latitude:      ptr(41.8),
		Longitude:     ptr(-87.6),
	}
	if closed != "" {
		r.ClosedDate = ptr(mustTime(t, closed))
	}
	return r
}

var potholeMapping = CategoryMapping{
	"Pothole":       {Category: "Infra", SubCategory: "Road"},
	"Graffiti":      {Category: "Sanitation", SubCategory: "Graffiti"},
	ExcludedType:    {Category: "Noise", SubCategory: "Aircraft"},
	"Tree Trimming": {Category: "Forestry", SubCategory: "Trees"},
}

func cluster(t *testing.T, records ...RawRecord) Cluster {
	t.Helper()
	joined, dropped := potholeMapping.Join(records)
	if dropped != 0 {
		t.Fatalf("test records must be mapped, %d dropped", dropped)
	}
	clusters := BuildClusters(joined)
	if len(clusters) != 1 {
		t.Fatalf("expected a single cluster, got %d", len(clusters))
	}
	return clusters[0]
}
