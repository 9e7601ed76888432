/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/membersonly/forum/internal/db"
	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/internal/store"
	"github.com/membersonly/forum/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage forum members",
}

var promoteRole string

var userPromoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Change a member's role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := types.ParseRole(promoteRole)
		if err != nil {
			return err
		}

		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer dbConn.Close()

		users := services.NewUserService(store.NewUserRepository(dbConn), nil, "", nil)
		if err := users.SetRole(cmd.Context(), args[0], role); err != nil {
			return err
		}

		log.Info("role updated", zap.String("username", args[0]), zap.String("role", role.String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userPromoteCmd)

	userPromoteCmd.Flags().StringVar(&promoteRole, "role", string(types.RoleAdmin), "role to grant (admin or member)")
}
