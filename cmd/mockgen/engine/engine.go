package engine

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"csr-pipeline/internal/extract"
	"csr-pipeline/internal/servicerequest"
)

type GeneratorConfig struct {
	Scenario     string // "mild", "backlog" or "noisy"
	Distribution string // "uniform" or "weibull"
	Count        int    // physical issues
	Now          time.Time
	Seed         int64
}

// srType is one synthetic request type with its category pair.
type srType struct {
	Name        string
	Category    string
	SubCategory string
}

var srTypes = []srType{
	{"Pothole in Street Complaint", "Streets & Transportation", "Potholes"},
	{"Street Light Out Complaint", "Streets & Transportation", "Street Lights"},
	{"Graffiti Removal Request", "Sanitation", "Graffiti"},
	{"Tree Trim Request", "Forestry", "Trees"},
	{"Abandoned Vehicle Complaint", "Vehicles", "Abandoned Vehicles"},
}

// Generate builds a raw extract of cfg.Count physical issues, each reported one to
// three times, plus the category mapping covering the generated types.
func Generate(cfg GeneratorConfig) ([]servicerequest.RawRecord, servicerequest.CategoryMapping) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	mapping := make(servicerequest.CategoryMapping, len(srTypes))
	for _, t := range srTypes {
		mapping[t.Name] = servicerequest.Category{Category: t.Category, SubCategory: t.SubCategory}
	}

	var records []servicerequest.RawRecord
	seq := 0
	nextID := func() string {
		seq++
		return fmt.Sprintf("SR%02d-%08d", cfg.Now.Year()%100, seq)
	}

	// Roughly two issues per day, the newest created today.
	start := servicerequest.DateOf(cfg.Now).AddDate(0, 0, -cfg.Count/2)

	for i := 0; i < cfg.Count; i++ {
		t := srTypes[rng.Intn(len(srTypes))]
		created := start.AddDate(0, 0, i/2).Add(time.Duration(rng.Intn(20*60)) * time.Minute)
		lat := 41.65 + rng.Float64()*0.35
		lon := -87.85 + rng.Float64()*0.33
		area := 1 + rng.Intn(77)

		reports := 1 + rng.Intn(3)
		for r := 0; r < reports; r++ {
			rec := servicerequest.RawRecord{
				SRNumber:        nextID(),
				SRType:          t.Name,
				SRShortCode:     shortCode(t.Name),
				OwnerDepartment: t.Category,
				Status:          string(servicerequest.StatusOpen),
				Origin:          "Mobile Device",
				CreatedDate:     created.Add(time.Duration(r) * time.Hour),
				StreetAddress:   fmt.Sprintf("%d n state st", 100+rng.Intn(9900)),
				StreetDirection: "N",
				StreetName:      "state",
				StreetType:      "st",
				CommunityArea:   &area,
				Latitude:        &lat,
				Longitude:       &lon,
			}
			rec.LastModifiedDate = rec.CreatedDate
			rec.CreatedHour = rec.CreatedDate.Hour()
			rec.CreatedDayOfWeek = int(rec.CreatedDate.Weekday()) + 1
			rec.CreatedMonth = int(rec.CreatedDate.Month())

			days := sampleDays(cfg, rng, i)
			closed := servicerequest.DateOf(rec.CreatedDate).Add(time.Duration(days * 24 * float64(time.Hour)))
			if closed.Before(cfg.Now) {
				rec.Status = string(servicerequest.StatusCompleted)
				rec.ClosedDate = &closed
				rec.LastModifiedDate = closed
			}
			records = append(records, rec)
		}
	}

	if cfg.Scenario == "noisy" {
		records = append(records, noise(cfg, rng, nextID)...)
	}

	return records, mapping
}

// sampleDays draws a completion latency in days for issue i.
func sampleDays(cfg GeneratorConfig, rng *rand.Rand, i int) float64 {
	k, lambda := 1.5, 6.0
	if cfg.Scenario == "backlog" {
		// Later issues take longer to close.
		ratio := float64(i) / float64(max(cfg.Count, 1))
		lambda = 6.0 + 20.0*ratio
	}
	if cfg.Distribution == "weibull" {
		return weibullSample(rng, k, lambda)
	}
	return 1.0 + rng.Float64()*lambda
}

// noise adds records the filter must drop: excluded type, missing coordinates,
// ineligible statuses and an unmapped type.
func noise(cfg GeneratorConfig, rng *rand.Rand, nextID func() string) []servicerequest.RawRecord {
	created := servicerequest.DateOf(cfg.Now).AddDate(0, 0, -3)
	lat, lon := 41.88, -87.63
	base := func(srType, status string) servicerequest.RawRecord {
		return servicerequest.RawRecord{
			SRNumber:    nextID(),
			SRType:      srType,
			Status:      status,
			CreatedDate: created.Add(time.Duration(rng.Intn(600)) * time.Minute),
			Latitude:    &lat,
			Longitude:   &lon,
		}
	}

	missing := base(srTypes[0].Name, "Open")
	missing.Latitude = nil

	return []servicerequest.RawRecord{
		base(servicerequest.ExcludedType, "Open"),
		missing,
		base(srTypes[1].Name, "Canceled"),
		base(srTypes[2].Name, "Duplicate"),
		base("311 Information Only Call", "Completed"),
	}
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

func shortCode(name string) string {
	code := make([]byte, 0, 3)
	for i := 0; i < len(name) && len(code) < 3; i++ {
		if c := name[i]; c >= 'A' && c <= 'Z' {
			code = append(code, c)
		}
	}
	return string(code)
}

// Save writes csr_raw.csv and sr_categories.csv into outDir.
func Save(outDir string, records []servicerequest.RawRecord, mapping servicerequest.CategoryMapping) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	if err := extract.SaveRawCSV(filepath.Join(outDir, "csr_raw.csv"), records); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(outDir, "sr_categories.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"sr_category", "sr_subcategory", "sr_type"})
	for _, t := range srTypes {
		c := mapping[t.Name]
		_ = w.Write([]string{c.Category, c.SubCategory, t.Name})
	}
	w.Flush()
	return w.Error()
}
