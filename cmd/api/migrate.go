package main

import (
	"errors"

	config "github.com/anjiri1684/drive_tutor/configs"
	"github.com/anjiri1684/drive_tutor/database"
	"github.com/anjiri1684/drive_tutor/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		if settings.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required to migrate")
		}
		log := logger.New(settings.Environment)
		defer log.Sync()

		db, err := database.Connect(settings.DatabaseURL, log)
		if err != nil {
			return err
		}
		return database.Migrate(db, log)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		if settings.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required to seed")
		}
		log := logger.New(settings.Environment)
		defer log.Sync()

		db, err := database.Connect(settings.DatabaseURL, log)
		if err != nil {
			return err
		}
		return database.SeedAdmin(cmd.Context(), database.NewStore(db),
			settings.AdminFullName, settings.AdminEmail, settings.AdminPassword, log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd)
}
