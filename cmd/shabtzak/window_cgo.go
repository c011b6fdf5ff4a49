//go:build cgo

package main

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	webview "github.com/webview/webview_go"

	"github.com/shabtzak/shell"
)

func init() {
	// The webview event loop must run on the main OS thread.
	runtime.LockOSThread()
}

// windowEvaluator runs scripts on the webview's UI thread. Each script is
// also registered with Init so pages loaded later see the latest URL.
type windowEvaluator struct {
	w webview.WebView
}

func (e windowEvaluator) Eval(js string) {
	e.w.Dispatch(func() {
		e.w.Init(js)
		e.w.Eval(js)
	})
}

// runWindow opens the main window and runs the backend until the window is
// closed or ctx is canceled.
func runWindow(ctx context.Context, cfg appConfig, logger *slog.Logger) error {
	if !hasDisplay(runtime.GOOS, os.Getenv) {
		return errNoWindow
	}
	w := webview.New(cfg.Debug)
	defer w.Destroy()

	w.SetTitle(cfg.Title)
	w.SetSize(cfg.Width, cfg.Height, webview.HintNone)

	sup := shell.New(append(cfg.options(), shell.WithEvaluator(windowEvaluator{w: w}))...)
	if err := sup.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sup.Shutdown(); err != nil {
			logger.Warn("backend shutdown", "error", err)
		}
	}()

	// Pages that load before the announcement still get a usable default.
	w.Init(shell.BackendURLScript(sup.URL()))
	w.Navigate(cfg.frontendURL())

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		backendDone := sup.Done()
		for {
			select {
			case <-ctx.Done():
				logger.Info("closing window", "reason", context.Cause(ctx))
				w.Dispatch(w.Terminate)
				return
			case <-backendDone:
				logger.Warn("backend exited; the window stays open", "error", sup.Wait())
				backendDone = nil
			case <-stopWatch:
				return
			}
		}
	}()

	w.Run()
	return nil
}
