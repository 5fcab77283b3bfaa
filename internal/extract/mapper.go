package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"csr-pipeline/internal/servicerequest"
	"csr-pipeline/internal/socrata"
)

// MapRow converts a SODA row into a typed RawRecord. Blank nullable fields become nil;
// a missing or malformed creation timestamp is an error.
func MapRow(row socrata.RowDTO) (servicerequest.RawRecord, error) {
	created, err := socrata.ParseTime(strings.TrimSpace(row.CreatedDate))
	if err != nil {
		return servicerequest.RawRecord{}, fmt.Errorf("sr %s: created_date: %w", row.SRNumber, err)
	}

	rec := servicerequest.RawRecord{
		SRNumber:        row.SRNumber,
		SRType:          row.SRType,
		SRShortCode:     row.SRShortCode,
		OwnerDepartment: row.OwnerDepartment,
		Status:          row.Status,
		Origin:          row.Origin,
		CreatedDate:     created,
		StreetAddress:   row.StreetAddress,
		StreetDirection: row.StreetDirection,
		StreetName:      row.StreetName,
		StreetType:      row.StreetType,
	}

	if rec.LastModifiedDate, err = optionalTime(row.LastModifiedDate); err != nil {
		return rec, fmt.Errorf("sr %s: last_modified_date: %w", row.SRNumber, err)
	}
	if s := strings.TrimSpace(row.ClosedDate); s != "" {
		closed, err := socrata.ParseTime(s)
		if err != nil {
			return rec, fmt.Errorf("sr %s: closed_date: %w", row.SRNumber, err)
		}
		rec.ClosedDate = &closed
	}

	if rec.CommunityArea, err = optionalInt(row.CommunityArea); err != nil {
		return rec, fmt.Errorf("sr %s: community_area: %w", row.SRNumber, err)
	}
	if rec.Latitude, err = optionalFloat(row.Latitude); err != nil {
		return rec, fmt.Errorf("sr %s: latitude: %w", row.SRNumber, err)
	}
	if rec.Longitude, err = optionalFloat(row.Longitude); err != nil {
		return rec, fmt.Errorf("sr %s: longitude: %w", row.SRNumber, err)
	}

	// Derived calendar columns fall back to the creation timestamp when the source omits them.
	rec.CreatedHour = intOr(row.CreatedHour, created.Hour())
	rec.CreatedDayOfWeek = intOr(row.CreatedDayOfWeek, int(created.Weekday())+1)
	rec.CreatedMonth = intOr(row.CreatedMonth, int(created.Month()))

	return rec, nil
}

// RecordToRow renders a RawRecord back into its SODA string form.
func RecordToRow(r servicerequest.RawRecord) socrata.RowDTO {
	row := socrata.RowDTO{
		SRNumber:         r.SRNumber,
		SRType:           r.SRType,
		SRShortCode:      r.SRShortCode,
		OwnerDepartment:  r.OwnerDepartment,
		Status:           r.Status,
		Origin:           r.Origin,
		CreatedDate:      socrata.FormatTime(r.CreatedDate),
		StreetAddress:    r.StreetAddress,
		StreetDirection:  r.StreetDirection,
		StreetName:       r.StreetName,
		StreetType:       r.StreetType,
		CreatedHour:      strconv.Itoa(r.CreatedHour),
		CreatedDayOfWeek: strconv.Itoa(r.CreatedDayOfWeek),
		CreatedMonth:     strconv.Itoa(r.CreatedMonth),
	}
	if !r.LastModifiedDate.IsZero() {
		row.LastModifiedDate = socrata.FormatTime(r.LastModifiedDate)
	}
	if r.ClosedDate != nil {
		row.ClosedDate = socrata.FormatTime(*r.ClosedDate)
	}
	if r.CommunityArea != nil {
		row.CommunityArea = strconv.Itoa(*r.CommunityArea)
	}
	if r.Latitude != nil {
		row.Latitude = strconv.FormatFloat(*r.Latitude, 'f', -1, 64)
	}
	if r.Longitude != nil {
		row.Longitude = strconv.FormatFloat(*r.Longitude, 'f', -1, 64)
	}
	return row
}

func optionalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return socrata.ParseTime(s)
}

func optionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	// Some exports render integral columns as floats ("23.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	v := int(f)
	return &v, nil
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func intOr(s string, fallback int) int {
	v, err := optionalInt(s)
	if err != nil || v == nil {
		return fallback
	}
	return *v
}
