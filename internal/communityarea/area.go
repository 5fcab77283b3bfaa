package communityarea

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrDuplicateArea is returned when the boundaries file lists an area number twice.
var ErrDuplicateArea = errors.New("duplicate community area number")

// Area is one processed row of the community area reference table.
type Area struct {
	Number     int
	Name       string
	Population int
	Side       string
}

// population holds the 2020 census count per area, indexed by area number - 1.
var population = [77]int{
	55711, 79265, 57464, 42271, 35814, 101739, 69099, 101208, 11402, 39671,
	27032, 19855, 19398, 47663, 64213, 53584, 42574, 13765, 73991, 23157,
	36374, 71384, 55416, 86350, 100120, 16374, 19901, 65581, 30409, 69708,
	34237, 41671, 28216, 13193, 21355, 6977, 2233, 24813, 18637, 12366,
	29559, 24223, 55396, 31341, 9647, 30315, 2246, 12087, 37610, 6856,
	15218, 23942, 25449, 7817, 9025, 36401, 13867, 42243, 15479, 33221,
	40957, 18366, 34788, 24728, 32594, 52464, 25772, 21378, 28991, 42745,
	46468, 19781, 26456, 19121, 20718, 14024, 56099,
}

var sides = map[string][]int{
	"Far North Side":     {76, 9, 10, 11, 12, 13, 14, 2, 4, 3, 1, 77},
	"Northwest Side":     {17, 18, 19, 15, 16, 20},
	"North Side":         {21, 22, 5, 6, 7},
	"West Side":          {25, 23, 24, 26, 27, 28, 29, 30, 31},
	"Central":            {8, 32, 33},
	"South Side":         {60, 34, 35, 37, 38, 36, 39, 40, 41, 42, 69, 43},
	"Southwest Side":     {56, 64, 57, 62, 65, 58, 63, 66, 59, 61, 67, 68},
	"Far Southwest Side": {70, 71, 72, 73, 74, 75},
	"Far Southeast Side": {44, 45, 47, 48, 46, 49, 50, 51, 52, 53, 54, 55},
}

var areaSide = func() map[int]string {
	m := make(map[int]string, len(population))
	for side, areas := range sides {
		for _, a := range areas {
			m[a] = side
		}
	}
	return m
}()

// Population returns the census count for an area, or 0 for an unknown number.
func Population(number int) int {
	if number < 1 || number > len(population) {
		return 0
	}
	return population[number-1]
}

// Side returns the city side an area belongs to, or "" for an unknown number.
func Side(number int) string {
	return areaSide[number]
}

// Load reads the community area boundaries CSV (AREA_NUMBE and COMMUNITY columns,
// others ignored) and returns the processed rows sorted by area number.
func Load(r io.Reader) ([]Area, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("community areas file is empty")
		}
		return nil, fmt.Errorf("failed to read community areas header: %w", err)
	}

	numberCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) {
		case "AREA_NUMBE":
			numberCol = i
		case "COMMUNITY":
			nameCol = i
		}
	}
	if numberCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("community areas file needs AREA_NUMBE and COMMUNITY columns")
	}

	caser := cases.Title(language.English)
	var areas []Area
	seen := make(map[int]int)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if numberCol >= len(row) || nameCol >= len(row) {
			return nil, fmt.Errorf("line %d: too few columns", line)
		}

		n, err := strconv.Atoi(strings.TrimSpace(row[numberCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: area number: %w", line, err)
		}
		if first, dup := seen[n]; dup {
			return nil, fmt.Errorf("line %d: %w %d (first seen on line %d)", line, ErrDuplicateArea, n, first)
		}
		seen[n] = line
		areas = append(areas, Area{
			Number:     n,
			Name:       caser.String(strings.TrimSpace(row[nameCol])),
			Population: Population(n),
			Side:       Side(n),
		})
	}

	sort.SliceStable(areas, func(i, j int) bool { return areas[i].Number < areas[j].Number })
	return areas, nil
}
