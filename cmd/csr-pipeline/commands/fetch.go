package commands

import (
	"path/filepath"

	"csr-pipeline/internal/extract"
	"csr-pipeline/internal/pipeline"
	"csr-pipeline/internal/socrata"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var fetchOut string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Extract service requests into the interchange CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ex := extract.NewExtractor(socrata.NewClient(cfg.Socrata), cfg.Socrata.ChunkSize, cfg.StartDate)
		records, err := ex.Extract(cmd.Context())
		if err != nil {
			return err
		}

		out := fetchOut
		if out == "" {
			out = filepath.Join(cfg.DataPath, pipeline.RawFileName)
		}
		if err := extract.SaveRawCSV(out, records); err != nil {
			return err
		}
		log.Info().Str("path", out).Int("records", len(records)).Msg("Wrote raw extract")
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "output CSV (default <DATA_PATH>/csr_raw.csv)")
}
