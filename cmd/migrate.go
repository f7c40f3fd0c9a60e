package cmd

import (
	"accounts/domain"
	"accounts/infrastructure/dbhandler"
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates the database tables",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := sql.Open("postgres", domain.GetDbUri())
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()

		handler := dbhandler.DBHandler{DB: db}
		if err := handler.Migrate(context.Background()); err != nil {
			log.Fatalf("🔴 migrating database - %v\n", err.Error())
		}
		log.Printf("database migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
