/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unisoruyor/apiserver/config"
	"github.com/unisoruyor/apiserver/internal/mq"
	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/types"
)

// eventsCmd groups notification event tooling.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect notification events on the message broker",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Subscribe to the notification channel and log each event",
	Long: `Subscribes to MQ_NOTIFICATION_CHANNEL on the broker selected by
MQ_BACKEND and logs every notification event until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := observability.NewLogger(os.Stdout, cfg.LogLevel)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := mq.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		notifications := mq.NewNotifications(backend, cfg.MQ.NotificationChannel)
		defer notifications.Close()

		logger.Info("tailing notification events", "backend", cfg.MQ.Backend, "channel", cfg.MQ.NotificationChannel)
		err = notifications.Consume(ctx, func(ctx context.Context, event types.NotificationEvent) error {
			logger.InfoContext(ctx, "notification event",
				"notification_id", event.NotificationID,
				"user_id", event.UserID,
				"type", event.Type,
				"title", event.Title,
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
