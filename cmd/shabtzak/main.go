// shabtzak is the desktop shell of the Shabtzak application. It opens the
// GUI window, prepares the per-user database and runs the bundled api-server
// backend for the lifetime of the window.
//
// Without cgo, or with --headless, no window is opened: the shell runs the
// backend and logs its URL until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/shabtzak/shell"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := defaultAppConfig()
	var configPath string

	flagSet := pflag.NewFlagSet("shabtzak", pflag.ContinueOnError)
	cfg.addFlags(flagSet, &configPath)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: shabtzak [flags]\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	required := configPath != ""
	if !required {
		configPath = defaultConfigPath(cfg)
	}
	if configPath != "" {
		file, found, err := loadConfigFile(configPath, required)
		if err != nil {
			return err
		}
		if found {
			cfg.mergeFile(file, flagSet)
		}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	shell.SetLogger(logger.With("component", "shabtzak"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Headless {
		err := runWindow(ctx, cfg, logger)
		if !errors.Is(err, errNoWindow) {
			return err
		}
		logger.Warn("no GUI available; running headless")
	}
	return runHeadless(ctx, cfg, logger)
}

// runHeadless runs the backend until ctx is canceled or the backend exits.
func runHeadless(ctx context.Context, cfg appConfig, logger *slog.Logger) error {
	sup := shell.New(cfg.options()...)
	if err := sup.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sup.Shutdown(); err != nil {
			logger.Warn("backend shutdown", "error", err)
		}
	}()

	go func() {
		if err := sup.WaitReady(ctx, shell.DefaultReadyTimeout); err != nil {
			logger.Warn("backend not ready", "error", err)
			return
		}
		logger.Info("backend ready", "url", sup.URL())
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx))
		return nil
	case <-sup.Done():
		return sup.Wait()
	}
}
