package extract

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"csr-pipeline/internal/servicerequest"
	"csr-pipeline/internal/socrata"
)

func TestMapRow_NullableFields(t *testing.T) {
	r := row("SR-1", "2025-01-03T14:05:09.000")
	r.Latitude = ""
	r.CommunityArea = "23.0"
	r.ClosedDate = "2025-01-06T09:00:00.000"

	rec, err := MapRow(r)
	if err != nil {
		t.Fatalf("MapRow() error = %v", err)
	}
	if rec.Latitude != nil {
		t.Errorf("blank latitude should map to nil, got %v", *rec.Latitude)
	}
	if rec.Longitude == nil || *rec.Longitude != -87.6 {
		t.Errorf("longitude = %v", rec.Longitude)
	}
	if rec.CommunityArea == nil || *rec.CommunityArea != 23 {
		t.Errorf("community area = %v", rec.CommunityArea)
	}
	if rec.ClosedDate == nil || !rec.ClosedDate.Equal(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("closed date = %v", rec.ClosedDate)
	}
	if rec.CreatedHour != 14 || rec.CreatedMonth != 1 || rec.CreatedDayOfWeek != 6 {
		t.Errorf("derived calendar fields = %d/%d/%d", rec.CreatedHour, rec.CreatedDayOfWeek, rec.CreatedMonth)
	}
}

func TestMapRow_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit func(*socrata.RowDTO)
	}{
		{"missing created date", func(r *socrata.RowDTO) { r.CreatedDate = "" }},
		{"bad closed date", func(r *socrata.RowDTO) { r.ClosedDate = "yesterday" }},
		{"bad latitude", func(r *socrata.RowDTO) { r.Latitude = "north" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := row("SR-1", "2025-01-03T14:05:09")
			tt.edit(&r)
			if _, err := MapRow(r); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRawCSV_RoundTrip(t *testing.T) {
	closed := row("SR-2", "2025-01-02T07:30:00.000")
	closed.Status = "Completed"
	closed.ClosedDate = "2025-01-04T12:00:00.000"
	closed.CommunityArea = "8"

	in := []socrata.RowDTO{row("SR-1", "2025-01-01T08:00:00.000"), closed}

	first, err := MapRow(in[0])
	if err != nil {
		t.Fatal(err)
	}
	second, err := MapRow(in[1])
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteRawCSV(&buf, []servicerequest.RawRecord{first, second}); err != nil {
		t.Fatalf("WriteRawCSV() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), strings.Join(socrata.Columns, ",")+"\n") {
		t.Errorf("expected the source header, got %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	got, err := ReadRawCSV(&buf)
	if err != nil {
		t.Fatalf("ReadRawCSV() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[1].ClosedDate == nil || !got[1].ClosedDate.Equal(*second.ClosedDate) {
		t.Errorf("closed date lost: %v", got[1].ClosedDate)
	}
	if got[0].ClosedDate != nil {
		t.Errorf("open record gained a closed date: %v", got[0].ClosedDate)
	}
	if *got[1].CommunityArea != 8 || *got[0].Latitude != 41.8 {
		t.Errorf("numeric fields lost: %+v", got[1])
	}
}

func TestReadRawCSV_HeaderOrderAndBOM(t *testing.T) {
	data := "\xef\xbb\xbfsr_type,sr_number,created_date,status\n" +
		"Graffiti Removal Request,SR-9,2025-02-01T00:00:00,Open\n"
	got, err := ReadRawCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadRawCSV() error = %v", err)
	}
	if len(got) != 1 || got[0].SRNumber != "SR-9" || got[0].SRType != "Graffiti Removal Request" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestSaveLoadRawCSV(t *testing.T) {
	rec, err := MapRow(row("SR-1", "2025-01-01T08:00:00"))
	if err != nil {
		t.Fatal(err)
	}
	path := t.TempDir() + "/nested/csr_raw.csv"
	if err := SaveRawCSV(path, []servicerequest.RawRecord{rec}); err != nil {
		t.Fatalf("SaveRawCSV() error = %v", err)
	}
	got, err := LoadRawCSV(path)
	if err != nil {
		t.Fatalf("LoadRawCSV() error = %v", err)
	}
	if len(got) != 1 || got[0].SRNumber != "SR-1" {
		t.Errorf("unexpected records: %+v", got)
	}
}
