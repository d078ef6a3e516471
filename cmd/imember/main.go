package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/imember/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "imember",
	Short: "Remember window positions per display count",
	Long: `imember snapshots where every window sits and, when displays are
connected or disconnected, moves windows back to where they were the last
time the same number of displays was active.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// reportedError marks an error that has already been logged.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func main() {
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/imember/config.yaml)")
}

// loadConfig loads the --config file, or the default path when unset.
func loadConfig() (*config.LoadResult, error) {
	if configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(configPath)
}

func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultConfigPath()
}
