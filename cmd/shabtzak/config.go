package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/shabtzak/shell"
	"github.com/shabtzak/shell/internal/datadir"
)

// configFileName is looked up in the data directory when --config is not
// given.
const configFileName = "shell.yaml"

// appConfig is the merged result of the config file and flags.
type appConfig struct {
	Identifier string `yaml:"identifier"`
	DataDir    string `yaml:"data_dir"`
	Sidecar    string `yaml:"sidecar"`
	SeedDB     string `yaml:"seed_db"`
	LogLevel   string `yaml:"log_level"`
	Headless   bool   `yaml:"headless"`
	URL        string `yaml:"url"`
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Debug      bool   `yaml:"debug"`
}

func defaultAppConfig() appConfig {
	return appConfig{
		Identifier: shell.DefaultIdentifier,
		Sidecar:    shell.DefaultSidecarName,
		LogLevel:   "info",
		Title:      "Shabtzak",
		Width:      1280,
		Height:     800,
	}
}

// addFlags registers every flag on fs, bound to cfg.
func (c *appConfig) addFlags(fs *pflag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "config", "", "YAML config file (default: "+configFileName+" in the data directory, if present)")
	fs.StringVar(&c.Identifier, "identifier", c.Identifier, "application identifier naming the per-user data directory")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "use this data directory instead of the per-user one")
	fs.StringVar(&c.Sidecar, "sidecar", c.Sidecar, "backend executable name or path")
	fs.StringVar(&c.SeedDB, "seed-db", c.SeedDB, "template database copied on first run (default: next to this executable)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "run without a window; log the backend URL instead")
	fs.StringVar(&c.URL, "url", c.URL, "frontend page to open (default: dist/index.html next to this executable)")
	fs.StringVar(&c.Title, "title", c.Title, "window title")
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable the webview developer tools")
	fs.BoolP("help", "h", false, "show help")
}

// mergeFile overlays file values onto c, except for flags set explicitly on
// the command line.
func (c *appConfig) mergeFile(file appConfig, fs *pflag.FlagSet) {
	set := func(flag string, apply func()) {
		if !fs.Changed(flag) {
			apply()
		}
	}
	if file.Identifier != "" {
		set("identifier", func() { c.Identifier = file.Identifier })
	}
	if file.DataDir != "" {
		set("data-dir", func() { c.DataDir = file.DataDir })
	}
	if file.Sidecar != "" {
		set("sidecar", func() { c.Sidecar = file.Sidecar })
	}
	if file.SeedDB != "" {
		set("seed-db", func() { c.SeedDB = file.SeedDB })
	}
	if file.LogLevel != "" {
		set("log-level", func() { c.LogLevel = file.LogLevel })
	}
	if file.Headless {
		set("headless", func() { c.Headless = true })
	}
	if file.URL != "" {
		set("url", func() { c.URL = file.URL })
	}
	if file.Title != "" {
		set("title", func() { c.Title = file.Title })
	}
	if file.Width > 0 {
		set("width", func() { c.Width = file.Width })
	}
	if file.Height > 0 {
		set("height", func() { c.Height = file.Height })
	}
	if file.Debug {
		set("debug", func() { c.Debug = true })
	}
}

// validate checks values that would otherwise panic in shell options.
func (c appConfig) validate() error {
	var errs []error
	if c.Identifier == "" && c.DataDir == "" {
		errs = append(errs, errors.New("identifier must not be empty"))
	}
	if c.Sidecar == "" {
		errs = append(errs, errors.New("sidecar must not be empty"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Width, c.Height))
	}
	return errors.Join(errs...)
}

// options translates c into supervisor options.
func (c appConfig) options() []shell.Option {
	opts := []shell.Option{shell.WithSidecar(c.Sidecar)}
	if c.Identifier != "" {
		opts = append(opts, shell.WithIdentifier(c.Identifier))
	}
	if c.DataDir != "" {
		opts = append(opts, shell.WithDataDir(c.DataDir))
	}
	if c.SeedDB != "" {
		opts = append(opts, shell.WithSeedDB(c.SeedDB))
	}
	return opts
}

// frontendURL returns the page the window opens.
func (c appConfig) frontendURL() string {
	if c.URL != "" {
		return c.URL
	}
	exe, err := os.Executable()
	if err != nil {
		return "about:blank"
	}
	return fileURL(filepath.Join(filepath.Dir(exe), "dist", "index.html"))
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/... on Windows
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// defaultConfigPath returns shell.yaml in the data directory the shell
// would use, or "" when that directory cannot be determined.
func defaultConfigPath(c appConfig) string {
	if c.DataDir != "" {
		return filepath.Join(c.DataDir, configFileName)
	}
	base, err := datadir.Base()
	if err != nil || c.Identifier == "" {
		return ""
	}
	return filepath.Join(base, c.Identifier, configFileName)
}

// loadConfigFile reads a YAML config file. Unknown keys are rejected. A
// missing file is reported with found=false and no error unless required.
func loadConfigFile(path string, required bool) (cfg appConfig, found bool, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user's own flags
	if errors.Is(err, fs.ErrNotExist) && !required {
		return appConfig{}, false, nil
	}
	if err != nil {
		return appConfig{}, false, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return appConfig{}, false, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, true, nil
}
