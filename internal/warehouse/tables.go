package warehouse

import (
	"context"
	"sort"
	"time"

	"csr-pipeline/internal/communityarea"
	"csr-pipeline/internal/servicerequest"
)

var (
	rawColumns = []string{
		"sr_number", "sr_type", "sr_short_code", "owner_department", "status",
		"origin", "created_date", "last_modified_date", "closed_date", "street_address",
		"street_direction", "street_name", "street_type", "community_area",
		"created_hour", "created_day_of_week", "created_month", "latitude", "longitude",
	}
	categoryColumns = []string{"sr_type", "sr_category", "sr_subcategory"}
	areaColumns     = []string{"area_number", "community", "population", "side"}
	resolvedColumns = []string{
		"sr_number", "sr_type", "status", "created_date", "closed_date", "time_to_complete",
		"sr_category", "sr_subcategory", "street_address", "community_area",
		"latitude", "longitude", "days_open",
	}
	dateColumns = []string{
		"date", "month_name", "month", "year", "quarter",
		"week_start", "month_start", "quarter_start", "year_start",
	}
)

// LoadRaw replaces csr_raw with the extract.
func (l *Loader) LoadRaw(ctx context.Context, records []servicerequest.RawRecord) error {
	return l.replace(ctx, rawTable(records))
}

// LoadCategories replaces sr_categories with the mapping.
func (l *Loader) LoadCategories(ctx context.Context, mapping servicerequest.CategoryMapping) error {
	return l.replace(ctx, categoryTable(mapping))
}

// LoadCommunityAreas replaces community_areas_processed.
func (l *Loader) LoadCommunityAreas(ctx context.Context, areas []communityarea.Area) error {
	t := table{name: TableCommunityAreas, columns: areaColumns}
	for _, a := range areas {
		t.rows = append(t.rows, []any{a.Number, a.Name, a.Population, a.Side})
	}
	return l.replace(ctx, t)
}

// LoadResolved replaces csr_processed with the fact table.
func (l *Loader) LoadResolved(ctx context.Context, records []servicerequest.ResolvedRecord) error {
	return l.replace(ctx, resolvedTable(records))
}

// LoadDates replaces the date dimension.
func (l *Loader) LoadDates(ctx context.Context, rows []servicerequest.DateDimensionRow) error {
	return l.replace(ctx, dateTable(rows))
}

func rawTable(records []servicerequest.RawRecord) table {
	t := table{name: TableRaw, columns: rawColumns, rows: make([][]any, 0, len(records))}
	for _, r := range records {
		var lastModified *time.Time
		if !r.LastModifiedDate.IsZero() {
			lastModified = &r.LastModifiedDate
		}
		t.rows = append(t.rows, []any{
			r.SRNumber, r.SRType, r.SRShortCode, r.OwnerDepartment, r.Status,
			r.Origin, r.CreatedDate, timeArg(lastModified), timeArg(r.ClosedDate), r.StreetAddress,
			r.StreetDirection, r.StreetName, r.StreetType, intArg(r.CommunityArea),
			r.CreatedHour, r.CreatedDayOfWeek, r.CreatedMonth, floatArg(r.Latitude), floatArg(r.Longitude),
		})
	}
	return t
}

func categoryTable(mapping servicerequest.CategoryMapping) table {
	t := table{name: TableCategories, columns: categoryColumns, rows: make([][]any, 0, len(mapping))}
	types := mapping.Types()
	sort.Strings(types)
	for _, srType := range types {
		c := mapping[srType]
		t.rows = append(t.rows, []any{srType, c.Category, c.SubCategory})
	}
	return t
}

func resolvedTable(records []servicerequest.ResolvedRecord) table {
	t := table{name: TableResolved, columns: resolvedColumns, rows: make([][]any, 0, len(records))}
	for _, r := range records {
		t.rows = append(t.rows, []any{
			r.SRNumber, r.SRType, string(r.Status), r.CreatedDate, timeArg(r.ClosedDate), intArg(r.CompletionDays),
			r.Category, r.SubCategory, r.StreetAddress, intArg(r.CommunityArea),
			r.Latitude, r.Longitude, intArg(r.OpenDays),
		})
	}
	return t
}

func dateTable(rows []servicerequest.DateDimensionRow) table {
	t := table{name: TableDates, columns: dateColumns, rows: make([][]any, 0, len(rows))}
	for _, d := range rows {
		t.rows = append(t.rows, []any{
			d.Date, d.MonthName, d.Month, d.Year, d.Quarter,
			d.WeekStart, d.MonthStart, d.QuarterStart, d.YearStart,
		})
	}
	return t
}

// Nullable arguments go in as untyped nil so lib/pq sends SQL NULL.

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
