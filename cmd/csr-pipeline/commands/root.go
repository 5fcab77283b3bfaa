package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"csr-pipeline/internal/config"
	"csr-pipeline/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "csr-pipeline",
	Short: "Weekly ETL for Chicago 311 service requests",
	Long: `Extracts 311 service requests from the city's open data portal, collapses duplicate
reports of the same physical issue into one Open or Completed record, and loads the
fact table and date dimension into the warehouse.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("csr-pipeline starting")
		return nil
	},
}

// Execute runs the root command; SIGINT/SIGTERM cancel the in-flight step.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(fetchCmd, transformCmd, migrateCmd, runCmd)
}
