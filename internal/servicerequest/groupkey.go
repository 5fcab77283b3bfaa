package servicerequest

import "time"

// GroupKey identifies one physical issue reported on one day.
// Coordinates are compared exactly; no spatial tolerance is applied.
type GroupKey struct {
	Latitude    float64
	Longitude   float64
	CreatedDate time.Time
	Category    string
	SubCategory string
	SRType      string
}

// Cluster is the set of reports sharing a GroupKey, in input order.
type Cluster struct {
	Key     GroupKey
	Members []MappedRecord
}

// KeyOf derives the grouping key of a mapped record, discarding the time of day.
func KeyOf(r MappedRecord) GroupKey {
	return GroupKey{
		Latitude:    *r.Latitude,
		Longitude:   *r.Longitude,
		CreatedDate: DateOf(r.CreatedDate),
		Category:    r.Category.Category,
		SubCategory: r.SubCategory,
		SRType:      r.SRType,
	}
}

// BuildClusters groups records by key. Clusters are ordered by first appearance.
func BuildClusters(records []MappedRecord) []Cluster {
	index := make(map[GroupKey]int)
	var clusters []Cluster

	for _, r := range records {
		key := KeyOf(r)
		i, ok := index[key]
		if !ok {
			i = len(clusters)
			index[key] = i
			clusters = append(clusters, Cluster{Key: key})
		}
		clusters[i].Members = append(clusters[i].Members, r)
	}

	return clusters
}
