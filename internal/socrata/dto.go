package socrata

import (
	"fmt"
	"time"
)

// Columns is the raw extract schema, in source order. It doubles as the $select list
// and the header of the interchange CSV.
var Columns = []string{
	"sr_number", "sr_type", "sr_short_code", "owner_department", "status",
	"origin", "created_date", "last_modified_date", "closed_date", "street_address",
	"street_direction", "street_name", "street_type", "community_area",
	"created_hour", "created_day_of_week", "created_month", "latitude", "longitude",
}

// RowDTO is one service request row as the SODA JSON endpoint returns it.
// SODA encodes numbers as strings and omits null fields.
type RowDTO struct {
	SRNumber         string `json:"sr_number"`
	SRType           string `json:"sr_type"`
	SRShortCode      string `json:"sr_short_code"`
	OwnerDepartment  string `json:"owner_department"`
	Status           string `json:"status"`
	Origin           string `json:"origin"`
	CreatedDate      string `json:"created_date"`
	LastModifiedDate string `json:"last_modified_date"`
	ClosedDate       string `json:"closed_date"`
	StreetAddress    string `json:"street_address"`
	StreetDirection  string `json:"street_direction"`
	StreetName       string `json:"street_name"`
	StreetType       string `json:"street_type"`
	CommunityArea    string `json:"community_area"`
	CreatedHour      string `json:"created_hour"`
	CreatedDayOfWeek string `json:"created_day_of_week"`
	CreatedMonth     string `json:"created_month"`
	Latitude         string `json:"latitude"`
	Longitude        string `json:"longitude"`
}

// Values returns the row's fields in Columns order.
func (r RowDTO) Values() []string {
	return []string{
		r.SRNumber, r.SRType, r.SRShortCode, r.OwnerDepartment, r.Status,
		r.Origin, r.CreatedDate, r.LastModifiedDate, r.ClosedDate, r.StreetAddress,
		r.StreetDirection, r.StreetName, r.StreetType, r.CommunityArea,
		r.CreatedHour, r.CreatedDayOfWeek, r.CreatedMonth, r.Latitude, r.Longitude,
	}
}

// RowFromValues builds a row from a header and a matching record. Unknown columns are ignored.
func RowFromValues(header, values []string) (RowDTO, error) {
	if len(header) != len(values) {
		return RowDTO{}, fmt.Errorf("row has %d fields, header has %d", len(values), len(header))
	}
	var r RowDTO
	fields := map[string]*string{
		"sr_number": &r.SRNumber, "sr_type": &r.SRType, "sr_short_code": &r.SRShortCode,
		"owner_department": &r.OwnerDepartment, "status": &r.Status, "origin": &r.Origin,
		"created_date": &r.CreatedDate, "last_modified_date": &r.LastModifiedDate, "closed_date": &r.ClosedDate,
		"street_address": &r.StreetAddress, "street_direction": &r.StreetDirection,
		"street_name": &r.StreetName, "street_type": &r.StreetType, "community_area": &r.CommunityArea,
		"created_hour": &r.CreatedHour, "created_day_of_week": &r.CreatedDayOfWeek,
		"created_month": &r.CreatedMonth, "latitude": &r.Latitude, "longitude": &r.Longitude,
	}
	for i, col := range header {
		if dst, ok := fields[col]; ok {
			*dst = values[i]
		}
	}
	return r, nil
}

// Floating timestamp layouts seen in SODA JSON and in CSV exports of it.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseTime parses a SODA floating timestamp. The wall clock is kept and read as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// FormatTime renders a timestamp in the SODA floating layout.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000")
}
