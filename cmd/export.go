/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/membersonly/forum/internal/db"
	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/internal/storage"
	"github.com/membersonly/forum/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export forum data to object storage",
}

var exportPostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Write a JSON snapshot of every post to the export bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		objects, err := storage.New(cmd.Context(), cfg.Storage)
		if err != nil {
			return fmt.Errorf("connect object storage: %w", err)
		}
		defer func() {
			if err := objects.Close(); err != nil {
				log.Warn("close object storage", zap.Error(err))
			}
		}()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer dbConn.Close()

		exporter := services.NewExportService(store.NewPostRepository(dbConn), objects)
		key, count, err := exporter.ExportPosts(cmd.Context())
		if err != nil {
			return err
		}

		log.Info("posts exported",
			zap.String("bucket", objects.Bucket()),
			zap.String("key", key),
			zap.Int("count", count),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportPostsCmd)
}
