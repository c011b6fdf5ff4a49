// nsis-patch edits the generated NSIS installer script so the installer
// removes stray desktop shortcuts (the backend, its resources and the
// uninstaller) and leaves only the application shortcut.
//
// Run it after the bundler has written installer.nsi and before makensis
// compiles it. Running it twice is harmless.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/shabtzak/shell/internal/installer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var manifestDir, script string

	defaultManifest := os.Getenv("CARGO_MANIFEST_DIR")
	if defaultManifest == "" {
		defaultManifest = "."
	}

	flagSet := pflag.NewFlagSet("nsis-patch", pflag.ContinueOnError)
	flagSet.StringVar(&manifestDir, "manifest-dir", defaultManifest, "bundle project directory ($CARGO_MANIFEST_DIR)")
	flagSet.StringVar(&script, "installer", "", "installer script to patch (default: target/release/nsis/x64/installer.nsi under --manifest-dir)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if script == "" {
		script = installer.DefaultScriptPath(manifestDir)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	changed, err := installer.PatchFile(script)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("patched installer script", "path", script)
	} else {
		logger.Info("installer script unchanged", "path", script)
	}
	return nil
}
