package servicerequest

import (
	"errors"
	"time"
)

// Status is the resolved lifecycle state of a physical issue.
type Status string

const (
	// StatusOpen marks an issue with at least one unclosed report.
	StatusOpen Status = "Open"
	// StatusCompleted marks an issue resolved by its longest recorded closure.
	StatusCompleted Status = "Completed"
)

// Sentinel errors for the resolution core.
var (
	// ErrEmptyCluster is returned when a cluster without members reaches the resolver.
	ErrEmptyCluster = errors.New("empty duplicate cluster")

	// ErrNoClosedMember is returned when a Completed candidate is requested from a cluster with no closed report.
	ErrNoClosedMember = errors.New("no closed member in cluster")

	// ErrDuplicateMapping is returned when a category mapping lists the same SR type twice.
	ErrDuplicateMapping = errors.New("duplicate SR type in category mapping")

	// ErrUnknownPolicy is returned for an unrecognised mixed-cluster policy name.
	ErrUnknownPolicy = errors.New("unknown mixed cluster policy")
)

// RawRecord is a single service-request report as extracted from the source API.
// It is never mutated once ingested; Normalize returns a copy.
type RawRecord struct {
	SRNumber         string
	SRType           string
	SRShortCode      string
	OwnerDepartment  string
	Status           string
	Origin           string
	CreatedDate      time.Time
	LastModifiedDate time.Time
	ClosedDate       *time.Time
	StreetAddress    string
	StreetDirection  string
	StreetName       string
	StreetType       string
	CommunityArea    *int
	CreatedHour      int
	CreatedDayOfWeek int
	CreatedMonth     int
	Latitude         *float64
	Longitude        *float64
}

// Category is the (category, sub-category) pair an SR type maps to.
type Category struct {
	Category    string
	SubCategory string
}

// ResolvedRecord is one canonical row of the fact table.
type ResolvedRecord struct {
	SRNumber       string
	SRType         string
	Status         Status
	CreatedDate    time.Time
	ClosedDate     *time.Time
	CompletionDays *int
	Category       string
	SubCategory    string
	StreetAddress  string
	CommunityArea  *int
	Latitude       float64
	Longitude      float64
	OpenDays       *int
}

// Key returns the grouping key the record was resolved under.
func (r ResolvedRecord) Key() GroupKey {
	return GroupKey{
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		CreatedDate: r.CreatedDate,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		SRType:      r.SRType,
	}
}

// DateDimensionRow is one calendar day of the date dimension.
type DateDimensionRow struct {
	Date         time.Time
	MonthName    string
	Month        int
	Year         int
	Quarter      string
	WeekStart    time.Time
	MonthStart   time.Time
	QuarterStart time.Time
	YearStart    time.Time
}

// DateOf truncates t to its calendar date at midnight UTC.
// Source timestamps carry no zone, so the wall clock is taken as-is.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
