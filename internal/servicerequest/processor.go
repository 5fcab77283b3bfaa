package servicerequest

import (
	"context"
	"fmt"
	"time"

	"csr-pipeline/internal/stats"

	"github.com/rs/zerolog/log"
)

// Options tunes a Process run.
type Options struct {
	// Today anchors the open-elapsed calculation. Zero means time.Now().
	Today              time.Time
	Workers            int
	MixedClusterPolicy MixedClusterPolicy
}

// Report summarises what a Process run kept, dropped and produced.
type Report struct {
	Filter         FilterStats `json:"filter"`
	UnmappedTypes  int         `json:"unmappedTypes"`
	Clusters       int         `json:"clusters"`
	OpenCount      int         `json:"open"`
	CompletedCount int         `json:"completed"`
	DateRows       int         `json:"dateRows"`

	// Completion summarises time_to_complete of Completed candidates; OpenAge
	// summarises days_open of Open candidates.
	Completion stats.Latency `json:"completion"`
	OpenAge    stats.Latency `json:"openAge"`
}

// Result bundles the fact table, the date dimension and the run report.
type Result struct {
	Resolved []ResolvedRecord
	Dates    []DateDimensionRow
	Report   Report
}

// Process runs filter, join, grouping, resolution and derived fields over an
// in-memory extract, and builds the date dimension from the joined population.
func Process(ctx context.Context, records []RawRecord, mapping CategoryMapping, opts Options) (*Result, error) {
	policy := opts.MixedClusterPolicy
	if policy == "" {
		policy = PolicyBoth
	}
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}

	filtered, filterStats := Filter(records)
	log.Info().
		Int("input", filterStats.Input).
		Int("excludedType", filterStats.ExcludedType).
		Int("missingCoordinates", filterStats.MissingCoordinates).
		Int("ineligibleStatus", filterStats.IneligibleStatus).
		Int("kept", filterStats.Kept).
		Msg("Filtered raw service requests")

	joined, unmapped := mapping.Join(filtered)
	if unmapped > 0 {
		log.Warn().Int("dropped", unmapped).Msg("Dropped records with SR types missing from the category mapping")
	}

	clusters := BuildClusters(joined)
	log.Debug().Int("records", len(joined)).Int("clusters", len(clusters)).Msg("Built duplicate clusters")

	resolved, err := Resolve(ctx, clusters, opts.Workers, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve clusters: %w", err)
	}
	ApplyDerived(resolved, today)

	created := make([]time.Time, len(joined))
	for i, r := range joined {
		created[i] = r.CreatedDate
	}
	dates := BuildDateDimension(created)

	report := Report{
		Filter:        filterStats,
		UnmappedTypes: unmapped,
		Clusters:      len(clusters),
		DateRows:      len(dates),
	}
	var completion, openAge []int
	for _, r := range resolved {
		if r.Status == StatusOpen {
			report.OpenCount++
			openAge = append(openAge, *r.OpenDays)
		} else {
			report.CompletedCount++
			completion = append(completion, *r.CompletionDays)
		}
	}
	report.Completion = stats.Summarize(completion)
	report.OpenAge = stats.Summarize(openAge)

	log.Info().
		Int("clusters", report.Clusters).
		Int("open", report.OpenCount).
		Int("completed", report.CompletedCount).
		Int("dates", report.DateRows).
		Float64("completionMedian", report.Completion.Median).
		Float64("completionP85", report.Completion.P85).
		Str("policy", string(policy)).
		Msg("Resolved service requests")

	return &Result{Resolved: resolved, Dates: dates, Report: report}, nil
}
