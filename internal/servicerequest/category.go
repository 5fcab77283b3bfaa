package servicerequest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CategoryMapping maps an SR type to its category pair. Types are unique.
type CategoryMapping map[string]Category

// MappedRecord is a filtered raw record joined with its category.
// Position is the record's index in the joined input and breaks ties during resolution.
type MappedRecord struct {
	RawRecord
	Category
	Position int
}

// Join performs the inner join on SR type. Records whose type is absent from the
// mapping are dropped and counted, never reported as errors.
func (m CategoryMapping) Join(records []RawRecord) ([]MappedRecord, int) {
	joined := make([]MappedRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		cat, ok := m[r.SRType]
		if !ok {
			dropped++
			continue
		}
		joined = append(joined, MappedRecord{RawRecord: r, Category: cat, Position: len(joined)})
	}
	return joined, dropped
}

// Types returns the mapped SR types in no particular order.
func (m CategoryMapping) Types() []string {
	types := make([]string, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	return types
}

// LoadCategoryMapping reads a CSV with sr_category, sr_subcategory and sr_type columns.
// Header names are matched case-insensitively; column order is free.
func LoadCategoryMapping(r io.Reader) (CategoryMapping, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("category mapping is empty")
		}
		return nil, fmt.Errorf("failed to read category header: %w", err)
	}

	idx := map[string]int{"sr_category": -1, "sr_subcategory": -1, "sr_type": -1}
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, ok := idx[name]; ok {
			idx[name] = i
		}
	}
	for name, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("category mapping is missing column %q", name)
		}
	}

	mapping := make(CategoryMapping)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read category row %d: %w", line, err)
		}

		srType := strings.TrimSpace(row[idx["sr_type"]])
		if srType == "" {
			continue
		}
		if _, exists := mapping[srType]; exists {
			return nil, fmt.Errorf("%w: %q (line %d)", ErrDuplicateMapping, srType, line)
		}
		mapping[srType] = Category{
			Category:    strings.TrimSpace(row[idx["sr_category"]]),
			SubCategory: strings.TrimSpace(row[idx["sr_subcategory"]]),
		}
	}

	return mapping, nil
}
