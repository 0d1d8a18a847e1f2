package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/BinitGoswami/my-placement/internal/events"
	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/notify"
	"github.com/BinitGoswami/my-placement/internal/session"
	"github.com/BinitGoswami/my-placement/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:     "browse [resource]",
	Short:   "Open the interactive console",
	GroupID: "records",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := model.LoginScreen
		if len(args) == 1 {
			res, err := lookupResource(args[0])
			if err != nil {
				return err
			}
			start = res.Screen()
		}
		refetch, _ := cmd.Flags().GetBool("refetch")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			if err := session.Watch(ctx, sessions, cfg.StateDir); err != nil {
				logger.Warn("session watcher stopped", "error", err)
			}
		}()

		var sub events.Subscriber
		if cfg.NATSURL != "" {
			s, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				logger.Warn("live refresh disabled", "nats_url", cfg.NATSURL, "error", err)
			} else {
				defer s.Close()
				sub = s
			}
		}

		m := tui.New(tui.Options{
			Sessions:             sessions,
			Client:               apiClient,
			Notify:               notify.New(notify.WithDuration(cfg.NotifyFor)),
			Bridge:               browseBridge,
			PageSize:             cfg.PageSize,
			Debounce:             cfg.Debounce,
			RefetchAfterMutation: refetch,
			Publisher:            publisher,
			Subscriber:           sub,
			Origin:               origin,
			Logger:               logger,
			Start:                start,
		})
		defer m.Close()

		p := tea.NewProgram(m, tea.WithAltScreen())
		browseBridge.Attach(p)
		defer browseBridge.Close()

		logger.Info("console started", "origin", origin, "start", start)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running console: %w", err)
		}
		return nil
	},
}

func init() {
	browseCmd.Flags().Bool("refetch", false, "reload the page after every change instead of updating it in place")
}
