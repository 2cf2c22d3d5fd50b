package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sortdownload/internal/app"
	"sortdownload/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds defaults from the environment and overlays the config file, if any.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	base := config.NewConfig(defaults["base_dir"], defaults["watch_dir"])
	cfg, err := config.LoadOrDefault(defaults["config_path"], base)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates a SortApp. The caller must defer app.Close().
func newApp() (*app.SortApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewSortApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

var rootCmd = &cobra.Command{
	Use:          "sortdownload",
	Short:        "Sort the downloads folder into monthly folders once a day",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		return a.Watch(ctx)
	},
}

// sort command
var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Run one sort pass now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		out, err := a.SortNow(ctx, force)
		if err != nil {
			return fmt.Errorf("sort failed: %w", err)
		}

		if !out.Due {
			fmt.Printf("Already sorted today (%s)\n", out.LastSorted.Format("2006-01-02 15:04:05"))
			return nil
		}
		fmt.Printf("Moved %d file(s) into %s\n", len(out.Result.Moved), out.Result.Bucket)
		for _, f := range out.Result.Failed {
			fmt.Printf("  skipped %s: %v\n", f.Name, f.Err)
		}
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show when the downloads folder was last sorted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Status()
		if err != nil {
			return err
		}

		last := "never"
		if !st.LastSorted.IsZero() {
			last = st.LastSorted.Format("2006-01-02 15:04:05")
		}
		due := color.GreenString("no")
		if st.Due {
			due = color.YellowString("yes")
		}

		fmt.Printf("Watching:    %s\n", st.WatchDir)
		fmt.Printf("Last sorted: %s\n", last)
		fmt.Printf("Sort due:    %s\n", due)
		fmt.Printf("Bucket:      %s\n", st.Bucket)
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"], defaults["watch_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Watch Dir: %s\n", cfg.WatchDir)
		fmt.Printf("Cache Dir: %s\n", cfg.CacheDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Watch Dir:     %s\n", cfg.WatchDir)
		fmt.Printf("Cache Dir:     %s\n", cfg.CacheDir)
		fmt.Printf("Cache Type:    %s\n", cfg.Cache.Type)
		fmt.Printf("Bucket Layout: %s\n", cfg.BucketLayout)
		fmt.Printf("Grace Period:  %s\n", cfg.GracePeriod())
		fmt.Printf("Log Level:     %s\n", cfg.LogLevel)
		fmt.Printf("Skip Partial:  %t\n", cfg.Filesystem.IgnorePartialDownloads)
		if len(cfg.Filesystem.Ignore) > 0 {
			fmt.Printf("Ignore:        %v\n", cfg.Filesystem.Ignore)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(sortCmd)
	sortCmd.Flags().BoolP("force", "f", false, "Sort even if a pass already ran today")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}
