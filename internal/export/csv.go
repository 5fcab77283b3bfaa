package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"csr-pipeline/internal/servicerequest"
)

const dateLayout = "2006-01-02"

// ResolvedHeader is the column order of the fact table export.
var ResolvedHeader = []string{
	"sr_number", "sr_type", "status", "created_date", "closed_date", "time_to_complete",
	"sr_category", "sr_subcategory", "street_address", "community_area",
	"latitude", "longitude", "days_open",
}

// DatesHeader is the column order of the date dimension export.
var DatesHeader = []string{
	"date", "month_name", "month", "year", "quarter",
	"week_start", "month_start", "quarter_start", "year_start",
}

// WriteResolved writes the fact table as CSV. Missing values are empty cells.
func WriteResolved(w io.Writer, records []servicerequest.ResolvedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResolvedHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{
			r.SRNumber,
			r.SRType,
			string(r.Status),
			r.CreatedDate.Format(dateLayout),
			optionalDate(r.ClosedDate),
			optionalInt(r.CompletionDays),
			r.Category,
			r.SubCategory,
			r.StreetAddress,
			optionalInt(r.CommunityArea),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			optionalInt(r.OpenDays),
		}); err != nil {
			return fmt.Errorf("failed to write %s: %w", r.SRNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDates writes the date dimension as CSV.
func WriteDates(w io.Writer, rows []servicerequest.DateDimensionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DatesHeader); err != nil {
		return err
	}
	for _, d := range rows {
		if err := cw.Write([]string{
			d.Date.Format(dateLayout),
			d.MonthName,
			strconv.Itoa(d.Month),
			strconv.Itoa(d.Year),
			d.Quarter,
			d.WeekStart.Format(dateLayout),
			d.MonthStart.Format(dateLayout),
			d.QuarterStart.Format(dateLayout),
			d.YearStart.Format(dateLayout),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path (and its directory) and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
