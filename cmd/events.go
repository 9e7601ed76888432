/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/membersonly/forum/internal/mq"
	"github.com/membersonly/forum/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect forum activity events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log activity events from MQ_CHANNEL until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		backend, err := mq.NewBackend(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("connect message broker: %w", err)
		}
		if backend == nil {
			return errors.New("MQ_BACKEND is not set; activity events are disabled")
		}
		defer backend.Close()

		log.Info("tailing activity events", zap.String("channel", cfg.MQ.Channel))
		err = mq.ConsumeEvents(ctx, backend, cfg.MQ.Channel, log, func(ctx context.Context, event types.ActivityEvent) error {
			log.Info("activity",
				zap.String("type", string(event.Type)),
				zap.Int64("user_id", event.UserID),
				zap.Int64("post_id", event.PostID),
				zap.Time("occurred_at", event.OccurredAt),
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
