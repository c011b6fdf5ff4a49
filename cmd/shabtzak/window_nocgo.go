//go:build !cgo

package main

import (
	"context"
	"log/slog"
)

func runWindow(context.Context, appConfig, *slog.Logger) error {
	return errNoWindow
}
