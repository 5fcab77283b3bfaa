package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"csr-pipeline/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, backlog, noisy")
	distribution := flag.String("distribution", "weibull", "Completion time distribution: uniform, weibull")
	outDir := flag.String("out", "./data", "Output directory for mock files")
	count := flag.Int("count", 200, "Number of physical issues to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Count:        *count,
		Now:          time.Now(),
		Seed:         *seed,
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Count: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Count, *outDir)

	records, mapping := engine.Generate(cfg)

	if err := engine.Save(*outDir, records, mapping); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. %d reports written.\n", len(records))
}
