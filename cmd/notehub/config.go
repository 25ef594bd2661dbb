package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notehub"
	"github.com/aretw0/notehub/pkg/core"
	"github.com/aretw0/notehub/pkg/notes"
)

const (
	envDir      = "NOTEHUB_DIR"
	envAdapter  = "NOTEHUB_ADAPTER"
	envDebounce = "NOTEHUB_DEBOUNCE"

	// configFileName lives inside the data directory.
	configFileName = "notehub.yaml"
)

// fileConfig is the shape of notehub.yaml.
type fileConfig struct {
	Adapter       string        `yaml:"adapter"`
	Debounce      time.Duration `yaml:"debounce"`
	ReadyDelay    time.Duration `yaml:"readyDelay"`
	MaxValueBytes int           `yaml:"maxValueBytes"`
}

// cliConfig is the effective configuration.
// Precedence: flags > environment > notehub.yaml > defaults.
type cliConfig struct {
	Dir string
	fileConfig
}

func loadConfig() (cliConfig, error) {
	cfg := cliConfig{
		fileConfig: fileConfig{
			Adapter:  "fs",
			Debounce: notes.DefaultDebounce,
		},
	}

	dir, err := resolveDir()
	if err != nil {
		return cfg, err
	}
	cfg.Dir = dir

	if err := cfg.mergeFile(filepath.Join(dir, configFileName)); err != nil {
		return cfg, err
	}

	if v := os.Getenv(envAdapter); v != "" {
		cfg.Adapter = v
	}
	if v := os.Getenv(envDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", envDebounce, err)
		}
		cfg.Debounce = d
	}

	if adapter != "" {
		cfg.Adapter = adapter
	}
	if debounce != "" {
		d, err := time.ParseDuration(debounce)
		if err != nil {
			return cfg, fmt.Errorf("invalid --debounce: %w", err)
		}
		cfg.Debounce = d
	}
	return cfg, nil
}

// resolveDir picks the data directory: --dir, then NOTEHUB_DIR, then the
// nearest .notehub above the working directory, then ./.notehub.
func resolveDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	if v := os.Getenv(envDir); v != "" {
		return v, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if found, err := notehub.FindDataDir(wd); err == nil {
		return found, nil
	}
	return filepath.Join(wd, ".notehub"), nil
}

func (c *cliConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if fc.Adapter != "" {
		c.Adapter = fc.Adapter
	}
	if fc.Debounce > 0 {
		c.Debounce = fc.Debounce
	}
	if fc.ReadyDelay != 0 {
		c.ReadyDelay = fc.ReadyDelay
	}
	if fc.MaxValueBytes > 0 {
		c.MaxValueBytes = fc.MaxValueBytes
	}
	slog.Debug("loaded config file", "path", path)
	return nil
}

// openApp builds the App from the effective configuration and restores the
// session. The caller must Close it.
func openApp(cmd *cobra.Command) (*notehub.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	app, err := notehub.New(cfg.Dir,
		notehub.WithAdapter(cfg.Adapter),
		notehub.WithDebounce(cfg.Debounce),
		notehub.WithReadyDelay(cfg.ReadyDelay),
		notehub.WithMaxValueBytes(cfg.MaxValueBytes),
		notehub.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notehub: %w", err)
	}
	app.Boot(cmd.Context())
	return app, nil
}

// openSession is openApp for commands that need a logged-in user.
func openSession(cmd *cobra.Command) (*notehub.App, error) {
	app, err := openApp(cmd)
	if err != nil {
		return nil, err
	}
	if app.Notes.UserID() == "" {
		app.Close()
		return nil, fmt.Errorf("%w: run `notehub login <name>` first", core.ErrNoUser)
	}
	return app, nil
}

// persist waits for the debounced save instead of letting the process exit
// before it fires.
func persist(cmd *cobra.Command, app *notehub.App) error {
	if err := app.Notes.Flush(cmd.Context()); err != nil {
		return fmt.Errorf("notes kept in memory but not saved (%s): %w", app.Notes.Status(), err)
	}
	return nil
}
