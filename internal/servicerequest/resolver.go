package servicerequest

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MixedClusterPolicy decides what happens to a cluster holding both open and closed reports.
type MixedClusterPolicy string

const (
	// PolicyBoth keeps the Open and the Completed candidate of a mixed cluster.
	PolicyBoth MixedClusterPolicy = "both"
	// PolicyClosedWins keeps only the Completed candidate of a mixed cluster.
	PolicyClosedWins MixedClusterPolicy = "closed-wins"
)

// ParseMixedClusterPolicy maps a configuration value to a policy. Empty means PolicyBoth.
func ParseMixedClusterPolicy(s string) (MixedClusterPolicy, error) {
	switch MixedClusterPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyBoth:
		return PolicyBoth, nil
	case PolicyClosedWins:
		return PolicyClosedWins, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

const hoursPerDay = 24.0

// CompletionDays returns the whole days between the creation date and the closure date.
// Both sides are truncated to their calendar date first, so the time of closure never
// shifts the result. The second result is false for unclosed reports.
func CompletionDays(r RawRecord) (float64, bool) {
	if r.ClosedDate == nil {
		return 0, false
	}
	return DateOf(*r.ClosedDate).Sub(DateOf(r.CreatedDate)).Hours() / hoursPerDay, true
}

// RoundDays rounds a latency half-to-even, so 2.5 becomes 2 and 3.5 becomes 4.
// Latencies from CompletionDays are already whole, so this only normalises the type.
func RoundDays(days float64) int {
	return int(math.RoundToEven(days))
}

// ResolveCluster reduces one duplicate cluster to its candidates.
// An unclosed member yields an Open candidate taken from the first unclosed report;
// closed members yield a Completed candidate taken from the first report with the
// longest latency. Mixed clusters yield both, Completed first.
func ResolveCluster(c Cluster) ([]ResolvedRecord, error) {
	if len(c.Members) == 0 {
		return nil, fmt.Errorf("%w: %+v", ErrEmptyCluster, c.Key)
	}

	var (
		firstOpen   *MappedRecord
		longest     *MappedRecord
		longestDays float64
	)

	for i := range c.Members {
		m := &c.Members[i]
		days, closed := CompletionDays(m.RawRecord)
		if !closed {
			if firstOpen == nil {
				firstOpen = m
			}
			continue
		}
		// Strict comparison keeps the earliest member among ties.
		if longest == nil || days > longestDays {
			longest = m
			longestDays = days
		}
	}

	candidates := make([]ResolvedRecord, 0, 2)
	if longest != nil {
		completed, err := completedCandidate(c.Key, longest, longestDays)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, completed)
	}
	if firstOpen != nil {
		candidates = append(candidates, openCandidate(c.Key, *firstOpen))
	}

	return candidates, nil
}

func openCandidate(key GroupKey, m MappedRecord) ResolvedRecord {
	r := baseCandidate(key, m)
	r.Status = StatusOpen
	return r
}

func completedCandidate(key GroupKey, m *MappedRecord, days float64) (ResolvedRecord, error) {
	if m == nil {
		return ResolvedRecord{}, fmt.Errorf("%w: %+v", ErrNoClosedMember, key)
	}
	rounded := RoundDays(days)
	closed := key.CreatedDate.AddDate(0, 0, rounded)

	r := baseCandidate(key, *m)
	r.Status = StatusCompleted
	r.CompletionDays = &rounded
	r.ClosedDate = &closed
	return r, nil
}

func baseCandidate(key GroupKey, m MappedRecord) ResolvedRecord {
	return ResolvedRecord{
		SRNumber:      m.SRNumber,
		SRType:        key.SRType,
		CreatedDate:   key.CreatedDate,
		Category:      key.Category,
		SubCategory:   key.SubCategory,
		StreetAddress: m.StreetAddress,
		CommunityArea: m.CommunityArea,
		Latitude:      key.Latitude,
		Longitude:     key.Longitude,
	}
}

// Resolve resolves every cluster, fanning the work out over at most workers goroutines,
// then applies the mixed-cluster policy and stable-sorts the candidates by creation date.
func Resolve(ctx context.Context, clusters []Cluster, workers int, policy MixedClusterPolicy) ([]ResolvedRecord, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Each cluster owns one slot, so workers never share state.
	slots := make([][]ResolvedRecord, len(clusters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range clusters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			candidates, err := ResolveCluster(clusters[i])
			if err != nil {
				return err
			}
			slots[i] = applyPolicy(candidates, policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var resolved []ResolvedRecord
	for _, candidates := range slots {
		resolved = append(resolved, candidates...)
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].CreatedDate.Before(resolved[j].CreatedDate)
	})

	return resolved, nil
}

func applyPolicy(candidates []ResolvedRecord, policy MixedClusterPolicy) []ResolvedRecord {
	if policy != PolicyClosedWins || len(candidates) < 2 {
		return candidates
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Status == StatusCompleted {
			kept = append(kept, c)
		}
	}
	return kept
}
