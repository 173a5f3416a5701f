package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/jjenkins/courtwatch/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a := mustApp(ctx)
		defer a.close()

		if a.db == nil {
			log.Println("Storage driver is not postgres, nothing to migrate")
			return
		}
		if err := store.Migrate(a.db, a.logger); err != nil {
			a.close()
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
