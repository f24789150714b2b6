package main

import (
	"github.com/spf13/cobra"

	"github.com/Leganyst/service-marketplace/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		gormDB, err := openDB(cfg, log, true)
		if err != nil {
			return err
		}
		closeDB(gormDB, log)
		log.Info("migrations applied", "driver", cfg.DB.Driver)
		return nil
	},
}

var adminInput service.RegisterInput

// Админов нельзя зарегистрировать через API, только этой командой.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		gormDB, err := openDB(cfg, log, true)
		if err != nil {
			return err
		}
		defer closeDB(gormDB, log)

		svc := newServices(gormDB, cfg.Auth, nil)
		u, err := svc.Identity.CreateAdmin(cmd.Context(), adminInput)
		if err != nil {
			return err
		}
		log.Info("admin created", "user_id", u.ID, "email", u.Email)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminInput.Email, "email", "", "admin email")
	f.StringVar(&adminInput.Password, "password", "", "admin password")
	f.StringVar(&adminInput.FullName, "name", "Administrator", "admin full name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
