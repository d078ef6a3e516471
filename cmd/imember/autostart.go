package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/1broseidon/imember/internal/autostart"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Start the daemon when you log in",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start the daemon at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entry, err := autostart.Default()
		if err != nil {
			return err
		}
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to find executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		if err := entry.Enable(exe); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "autostart: enabled (%s)\n", entry.Path())
		return nil
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting the daemon at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entry, err := autostart.Default()
		if err != nil {
			return err
		}
		if err := entry.Disable(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "autostart: disabled")
		return nil
	},
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the daemon starts at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entry, err := autostart.Default()
		if err != nil {
			return err
		}
		enabled, exec, err := entry.Enabled()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "autostart: %s\n", enabledLabel(enabled))
		fmt.Fprintf(w, "entry:     %s\n", entry.Path())
		if exec != "" {
			fmt.Fprintf(w, "exec:      %s\n", exec)
		}
		return nil
	},
}

func init() {
	autostartCmd.AddCommand(autostartEnableCmd, autostartDisableCmd, autostartStatusCmd)
	rootCmd.AddCommand(autostartCmd)
}
