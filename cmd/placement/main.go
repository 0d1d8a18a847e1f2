package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/BinitGoswami/my-placement/internal/client"
	"github.com/BinitGoswami/my-placement/internal/config"
	"github.com/BinitGoswami/my-placement/internal/events"
	"github.com/BinitGoswami/my-placement/internal/idgen"
	"github.com/BinitGoswami/my-placement/internal/logging"
	"github.com/BinitGoswami/my-placement/internal/session"
	"github.com/BinitGoswami/my-placement/internal/tui"
	"github.com/BinitGoswami/my-placement/internal/ui"
)

var (
	apiURL     string
	jsonOutput bool

	cfg       *config.Config
	logger    = slog.Default()
	closeLog  = func() error { return nil }
	sessions  *session.Store
	apiClient client.ConsoleClient
	publisher events.Publisher = &events.NoopPublisher{}
	origin    = idgen.OriginID()

	browseBridge *tui.Bridge

	// expired is set by the client when a request finds the session gone.
	expired atomic.Bool
)

// errReported marks a failure that has already been shown to the user.
var errReported = errors.New("failure already reported")

var rootCmd = &cobra.Command{
	Use:           "placement <command>",
	Short:         "Console for the placement management service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.SetColor(ui.ShouldUseColor())

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("api-url") {
			cfg.APIURL = apiURL
		}

		logFile := cfg.LogFile
		if isInteractive(cmd) && logFile == "" {
			logFile = defaultLogFile(cfg.StateDir)
		}
		logger, closeLog, err = logging.New(logging.Options{File: logFile, Level: cfg.LogLevel})
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}

		persister, err := session.NewFilePersister(cfg.StateDir)
		if err != nil {
			return err
		}
		sessions = session.NewStore(session.WithPersister(persister), session.WithLogger(logger))
		if err := sessions.Open(); err != nil {
			logger.Warn("discarding unreadable session", "error", err)
		}

		opts := []client.Option{
			client.WithLogger(logger),
			client.WithTimeout(cfg.Timeout),
			client.WithFrozenMarker(cfg.FrozenMarker),
			client.WithNavigator(navigatorFor(cmd)),
		}
		if cfg.RateLimit > 0 {
			opts = append(opts, client.WithRateLimit(cfg.RateLimit, 1))
		}
		apiClient = client.NewHTTPClient(cfg.APIURL, sessions, opts...)

		if cfg.NATSURL != "" {
			p, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				logger.Warn("change notices disabled", "nats_url", cfg.NATSURL, "error", err)
			} else {
				publisher = p
			}
		}

		return gate(cmd, args)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if apiClient != nil {
			apiClient.Close()
		}
		publisher.Close()
		closeLog()
	},
}

// navigatorFor returns the redirect target of a session expiry. The
// interactive screen installs its own; every other command records the
// expiry so main can explain it once the command returns.
func navigatorFor(cmd *cobra.Command) client.Navigator {
	if isInteractive(cmd) {
		browseBridge = tui.NewBridge(logger)
		return browseBridge
	}
	return client.NavigatorFunc(func(screen string, params url.Values) {
		expired.Store(true)
		logger.Info("session expired", "redirect", screen)
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "placement API base URL (overrides PLACEMENT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "auth", Title: "Account:"},
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Account
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Records
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(browseCmd)

	// System
	rootCmd.AddCommand(healthCmd)
}

func main() {
	err := rootCmd.Execute()
	switch {
	case expired.Load() || errors.Is(err, client.ErrSessionExpired):
		fmt.Fprintln(os.Stderr, ui.RenderWarn("Your session has expired.")+" Run "+ui.RenderCommand("placement login")+" to sign in again.")
		os.Exit(1)
	case errors.Is(err, errReported):
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, ui.RenderError("Error:"), err)
		os.Exit(1)
	}
}
