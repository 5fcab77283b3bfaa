package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"csr-pipeline/internal/servicerequest"
	"csr-pipeline/internal/socrata"
)

// WriteRawCSV writes the interchange file: a header of the source columns followed by
// one row per record, in input order.
func WriteRawCSV(w io.Writer, records []servicerequest.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(socrata.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(RecordToRow(r).Values()); err != nil {
			return fmt.Errorf("failed to write %s: %w", r.SRNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRawCSV parses an interchange file. Columns are matched by header name.
func ReadRawCSV(r io.Reader) ([]servicerequest.RawRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("raw extract is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	var records []servicerequest.RawRecord
	for line := 2; ; line++ {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := socrata.RowFromValues(header, values)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := MapRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveRawCSV writes the interchange file to path, creating parent directories.
func SaveRawCSV(path string, records []servicerequest.RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteRawCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadRawCSV reads the interchange file at path.
func LoadRawCSV(path string) ([]servicerequest.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRawCSV(f)
}

func trimBOM(s string) string {
	if len(s) >= 3 && s[:3] == "\xef\xbb\xbf" {
		return s[3:]
	}
	return s
}
