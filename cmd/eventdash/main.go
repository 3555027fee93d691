package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NasaVasa/eventdash/internal/app"
	"github.com/NasaVasa/eventdash/internal/config"
	"github.com/spf13/cobra"
)

type overrides struct {
	apiURL    string
	logLevel  string
	logFile   string
	listen    string
	exportDir string
}

func (o overrides) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIBaseURL = o.apiURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = o.listen
	}
	if flags.Changed("export-dir") {
		cfg.ExportDir = o.exportDir
	}
}

func BuildRootCmd() *cobra.Command {
	var o overrides

	// run loads the configuration, applies flag overrides and hands the
	// initialized app to fn.
	run := func(fn func(a *app.App, ctx context.Context) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			o.apply(cmd, &cfg)

			application, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer application.Shutdown()
			return fn(application, ctx)
		}
	}

	root := &cobra.Command{
		Use:          "eventdash",
		Short:        "Operator dashboard for the event-log API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&o.apiURL, "api-url", "", "event-log API base URL (EVENTDASH_API_BASE_URL)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level (EVENTDASH_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&o.logFile, "log-file", "", "write logs to this file (EVENTDASH_LOG_FILE)")

	consoleCmd := &cobra.Command{
		Use:   "console",
		Short: "Run the terminal dashboard",
		RunE:  run((*app.App).RunConsole),
	}
	consoleCmd.Flags().StringVar(&o.exportDir, "export-dir", "", "directory for CSV exports (EVENTDASH_EXPORT_DIR)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard",
		RunE:  run((*app.App).Serve),
	}
	serveCmd.Flags().StringVar(&o.listen, "listen", "", "listen address (EVENTDASH_LISTEN_ADDR)")

	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and feed relay",
		RunE:  run((*app.App).RunBot),
	}

	root.AddCommand(consoleCmd, serveCmd, botCmd)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := BuildRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "eventdash:", err)
		stop()
		os.Exit(1)
	}
}
