package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"csr-pipeline/internal/communityarea"
	"csr-pipeline/internal/extract"
	"csr-pipeline/internal/objectstore"
	"csr-pipeline/internal/pipeline"
	"csr-pipeline/internal/socrata"
	"csr-pipeline/internal/warehouse"
	"csr-pipeline/migrations"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runMigrate bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full weekly job: fetch, stage, load, transform",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.WarehouseDSN == "" {
			return errors.New("WAREHOUSE_DSN is not set")
		}

		mapping, err := loadMapping(cfg.CategoriesFile)
		if err != nil {
			return err
		}
		areas, err := loadAreas(cfg.CommunityAreasFile)
		if err != nil {
			return err
		}

		db, err := warehouse.Open(ctx, cfg.WarehouseDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if runMigrate {
			if err := migrations.Apply(db); err != nil {
				return err
			}
		}

		runner := &pipeline.Runner{
			Source:    extract.NewExtractor(socrata.NewClient(cfg.Socrata), cfg.Socrata.ChunkSize, cfg.StartDate),
			Warehouse: warehouse.NewLoader(db),
			Mapping:   mapping,
			Areas:     areas,
			DataPath:  cfg.DataPath,
			Options:   resolveOptions(),
		}

		if cfg.BucketURL != "" {
			bucket, err := objectstore.Open(ctx, cfg.BucketURL, cfg.BucketPrefix)
			if err != nil {
				return err
			}
			defer bucket.Close()
			runner.Uploader = bucket
		} else {
			log.Warn().Msg("BUCKET_URL is not set, skipping upload of the raw extract")
		}

		summary, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runMigrate, "migrate", true, "apply pending warehouse migrations before loading")
}

func loadAreas(path string) ([]communityarea.Area, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open community areas: %w", err)
	}
	defer f.Close()
	return communityarea.Load(f)
}
