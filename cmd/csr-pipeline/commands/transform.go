package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"csr-pipeline/internal/export"
	"csr-pipeline/internal/extract"
	"csr-pipeline/internal/pipeline"
	"csr-pipeline/internal/servicerequest"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	transformIn    string
	transformOut   string
	transformToday string
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Resolve duplicate reports from a raw CSV into fact and date dimension CSVs",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := transformIn
		if in == "" {
			in = filepath.Join(cfg.DataPath, pipeline.RawFileName)
		}
		outDir := transformOut
		if outDir == "" {
			outDir = cfg.DataPath
		}

		records, err := extract.LoadRawCSV(in)
		if err != nil {
			return err
		}
		mapping, err := loadMapping(cfg.CategoriesFile)
		if err != nil {
			return err
		}

		opts := resolveOptions()
		if transformToday != "" {
			if opts.Today, err = time.Parse("2006-01-02", transformToday); err != nil {
				return fmt.Errorf("invalid --today: %w", err)
			}
		}

		result, err := servicerequest.Process(cmd.Context(), records, mapping, opts)
		if err != nil {
			return err
		}

		if err := export.WriteFile(filepath.Join(outDir, "csr_processed.csv"), func(w io.Writer) error {
			return export.WriteResolved(w, result.Resolved)
		}); err != nil {
			return err
		}
		if err := export.WriteFile(filepath.Join(outDir, "dates.csv"), func(w io.Writer) error {
			return export.WriteDates(w, result.Dates)
		}); err != nil {
			return err
		}

		log.Info().Str("dir", outDir).Msg("Wrote fact table and date dimension")
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Report)
	},
}

func init() {
	transformCmd.Flags().StringVarP(&transformIn, "in", "i", "", "raw CSV (default <DATA_PATH>/csr_raw.csv)")
	transformCmd.Flags().StringVarP(&transformOut, "out", "o", "", "output directory (default DATA_PATH)")
	transformCmd.Flags().StringVar(&transformToday, "today", "", "reference date for days_open, YYYY-MM-DD (default today)")
}

func loadMapping(path string) (servicerequest.CategoryMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open category mapping: %w", err)
	}
	defer f.Close()
	return servicerequest.LoadCategoryMapping(f)
}

func resolveOptions() servicerequest.Options {
	return servicerequest.Options{
		Workers:            cfg.Workers,
		MixedClusterPolicy: cfg.MixedClusterPolicy,
	}
}
