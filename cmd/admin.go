/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/unisoruyor/apiserver/config"
	"github.com/unisoruyor/apiserver/internal/db"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/internal/store"
)

// adminCmd groups administrator account maintenance.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default administrator if it does not exist",
	Long: `Creates the administrator configured by ADMIN_USERNAME, ADMIN_EMAIL and
ADMIN_PASSWORD. An existing account with the same username or email is
promoted instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.Admin.Password == "" {
			return errors.New("ADMIN_PASSWORD is required")
		}

		users, closeDB, err := openUserService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		admin, created, err := users.EnsureAdmin(cmd.Context(), services.AdminSeed{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			return fmt.Errorf("seed admin failed: %w", err)
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", admin.Username, admin.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists (id %d)\n", admin.Username, admin.ID)
		}
		return nil
	},
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Grant admin rights to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		users, closeDB, err := openUserService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		user, err := users.Promote(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("promote %s failed: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminSeedCmd)
	adminCmd.AddCommand(adminPromoteCmd)
}

func openUserService(ctx context.Context, cfg config.Config) (*services.UserService, func(), error) {
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database failed: %w", err)
	}
	users := services.NewUserService(store.NewUserRepository(conn), time.Now)
	return users, func() { _ = conn.Close() }, nil
}
