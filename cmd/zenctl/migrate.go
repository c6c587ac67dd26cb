package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"financaszen/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				return fmt.Errorf("no database path: pass --db or set SQLITE_DB_PATH")
			}
			if err := storage.RunMigrations(dbPath); err != nil {
				return err
			}
			v, dirty, err := storage.MigrationVersion(dbPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d (dirty: %t)\n", dbPath, v, dirty)
			return nil
		},
	}
	def := os.Getenv("SQLITE_DB_PATH")
	if def == "" {
		def = "./data/zen.db"
	}
	cmd.Flags().StringVar(&dbPath, "db", def, "SQLite database file")
	return cmd
}
