package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"wayfocus/internal/app"
)

var logToFile bool

var appletCmd = &cobra.Command{
	Use:   "applet",
	Short: "Run the hotkey applet daemon",
	Long: `The applet tracks compositor windows, merges them with the pinned
favorites list and keeps ten modifier+digit hotkeys bound to the first
ten slots. It also serves a control socket for status queries and
activation requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplet()
	},
}

func init() {
	appletCmd.Flags().BoolVar(&logToFile, "log-file", false, "write logs to the default log file instead of the console")
}

func runApplet() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("Starting wayfocus applet",
		"pid", os.Getpid(),
		"os", runtime.GOOS,
		"favorites", cfg.GetFavoritesPath())

	applet, err := app.NewApplet()
	if err != nil {
		return fmt.Errorf("failed to create applet: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return applet.Run(ctx)
}
