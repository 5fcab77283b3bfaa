package commands

import (
	"errors"

	"csr-pipeline/internal/warehouse"
	"csr-pipeline/migrations"

	"github.com/spf13/cobra"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the warehouse schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.WarehouseDSN == "" {
			return errors.New("WAREHOUSE_DSN is not set")
		}
		db, err := warehouse.Open(cmd.Context(), cfg.WarehouseDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if migrateDown {
			return migrations.Down(db)
		}
		return migrations.Apply(db)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back every migration (drops all tables)")
}
