package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wayfocus/internal/appid"
	"wayfocus/internal/desktop"
	"wayfocus/internal/ipc"
	"wayfocus/internal/registry"
	"wayfocus/internal/resolver"
	"wayfocus/internal/wm"
	"wayfocus/pkg/config"
	"wayfocus/pkg/global"
	"wayfocus/pkg/logger"
)

// Exit codes for scripting against the one-shot command.
const (
	exitOK       = 0
	exitError    = 1
	exitNotFound = 2
	exitStale    = 3
	exitTimeout  = 4
)

var (
	configPath string
	launchCmd  string
	timeout    time.Duration
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "wayfocus <app-id>",
	Short: "Focus a running application or launch it",
	Long: `wayfocus focuses the window of a running application, or launches
the application when no window matches. The identifier is matched
case-insensitively against window app ids and desktop entries, with
common wrapper suffixes stripped.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.Flags().StringVar(&launchCmd, "launch-cmd", "", "command to run instead of the desktop entry when launching")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "overall deadline for the focus-or-launch attempt")
	rootCmd.AddCommand(appletCmd, statusCmd)
}

// Execute runs the CLI and maps the resulting error onto an exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	code := exitCodeFor(err)
	if code == exitTimeout {
		fmt.Fprintf(os.Stderr, "wayfocus: timed out: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "wayfocus: %v\n", err)
	}
	return code
}

// exitCodeFor classifies an error for scripting. A deadline can surface
// either as the context error or as a connection i/o timeout, depending
// on whether the context or the socket deadline fired first; both mean
// the other side never responded in time.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, resolver.ErrNotFound):
		return exitNotFound
	case errors.Is(err, resolver.ErrStaleHandle):
		return exitStale
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded):
		return exitTimeout
	default:
		return exitError
	}
}

// bootstrap initializes the logger, loads the configuration and seeds the
// global accessors. Every subcommand starts here.
func bootstrap() (*config.Config, *logger.Logger, error) {
	level := logger.LevelFromEnv(zerolog.InfoLevel)
	switch {
	case verbosity == 1:
		level = zerolog.DebugLevel
	case verbosity >= 2:
		level = zerolog.TraceLevel
	}

	var log *logger.Logger
	var err error
	if logToFile {
		log, err = logger.NewFileLogger(logger.WithLevel(level))
	} else {
		log, err = logger.NewLogger(
			logger.WithConsole(),
			logger.WithLevel(level),
		)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.FindConfig(configPath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	global.InitGlobals(cfg, log)
	return cfg, log, nil
}

// runOneShot performs a single focus-or-launch attempt. When the applet
// daemon is running its live registry answers the request; otherwise an
// ephemeral registry is built from one compositor snapshot.
func runOneShot(requested string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()

	// One deadline covers the whole attempt, daemon round trip included.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// The daemon path only handles plain requests; an explicit launch
	// command bypasses it.
	if launchCmd == "" {
		if done, err := activateViaDaemon(ctx, requested, log); done {
			return err
		}
	}

	client, err := wm.NewClient(log)
	if err != nil {
		return err
	}

	norm := appid.NewNormalizer(cfg.GetEquivalences())
	reg := registry.New(norm, log)
	tops, err := client.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}
	reg.Resync(tops)

	db := desktop.NewDatabase(norm, log)
	if err := db.Rescan(); err != nil {
		log.Warn("Desktop entry scan failed", "error", err.Error())
	}

	r := resolver.New(reg, db, norm, log)
	e := resolver.NewExecutor(client, reg, log)
	return resolver.FocusOrLaunch(ctx, r, e, requested, launchCmd)
}

// activateViaDaemon tries the running applet first. Returns done=false
// when no daemon answered, in which case the caller falls back to the
// ephemeral path. A daemon that accepted the request but ran out the
// deadline is done: the budget is spent either way.
func activateViaDaemon(ctx context.Context, requested string, log *logger.Logger) (done bool, err error) {
	resp, err := ipc.SendCommand(ctx, ipc.Request{Command: "activate", AppID: requested})
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return true, err
		}
		log.Debug("No applet daemon reachable, using one-shot path",
			"error", err.Error())
		return false, nil
	}
	if resp.Status != "success" {
		return true, daemonError(resp.Message)
	}
	log.Info("Activated via applet daemon", "app_id", requested)
	return true, nil
}

// daemonError restores the resolver sentinels from a daemon error message
// so the exit code mapping survives the IPC round trip.
func daemonError(message string) error {
	switch {
	case strings.Contains(message, resolver.ErrNotFound.Error()):
		return fmt.Errorf("%s: %w", message, resolver.ErrNotFound)
	case strings.Contains(message, resolver.ErrStaleHandle.Error()):
		return fmt.Errorf("%s: %w", message, resolver.ErrStaleHandle)
	default:
		return errors.New(message)
	}
}
