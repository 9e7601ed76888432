/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/membersonly/forum/config"
	"github.com/membersonly/forum/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forum",
	Short: "Members-only discussion forum",
	Long: `A passcode-gated discussion forum. Members post, admins moderate.

	forum migrate up
	forum server
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg := config.LoadConfig()
	log, err := logger.New(cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, log, nil
}
