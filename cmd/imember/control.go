package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/1broseidon/imember/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := ipc.NewClient().GetStatus()
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), status, time.Now())
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Snapshot window positions for the current display count now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := ipc.NewClient().SaveNow()
		if err != nil {
			return err
		}
		if !status.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "snapshots are disabled; nothing saved")
			return nil
		}
		printStatus(cmd.OutOrStdout(), status, time.Now())
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Move windows back to the arrangement saved for the current display count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := ipc.NewClient().Restore()
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), status, time.Now())
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Enable or disable snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		enabled, err := ipc.NewClient().Toggle()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snapshots: %s\n", enabledLabel(enabled))
		return nil
	},
}

var arrangementsCmd = &cobra.Command{
	Use:   "arrangements",
	Short: "List saved arrangements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := ipc.NewClient().ListArrangements()
		if err != nil {
			return err
		}
		printArrangements(cmd.OutOrStdout(), data)
		return nil
	},
}

var logsLines int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the daemon's recent activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		lines, err := ipc.NewClient().GetLogs(logsLines)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the daemon to reload its configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ipc.NewClient().Reload(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 0, "Number of most recent lines (default: all)")

	rootCmd.AddCommand(statusCmd, saveCmd, restoreCmd, toggleCmd, arrangementsCmd, logsCmd, reloadCmd)
}

func enabledLabel(enabled bool) string {
	if enabled {
		return color.New(color.FgGreen, color.Bold).Sprint("enabled")
	}
	return color.New(color.FgYellow, color.Bold).Sprint("disabled")
}

func printStatus(w io.Writer, status *ipc.StatusData, now time.Time) {
	muted := color.New(color.FgHiBlack)

	fmt.Fprintf(w, "snapshots:     %s\n", enabledLabel(status.Enabled))

	displays := fmt.Sprintf("%d", status.DisplayCount)
	if status.AllDisconnected {
		displays += " " + color.RedString("(all disconnected)")
	} else if status.DisplayCount > status.MaxDisplays {
		displays += " " + color.RedString("(unsupported, max %d)", status.MaxDisplays)
	}
	fmt.Fprintf(w, "displays:      %s\n", displays)

	if status.LastSnapshotAt == nil {
		fmt.Fprintf(w, "last snapshot: %s\n", muted.Sprint("never"))
	} else {
		fmt.Fprintf(w, "last snapshot: %d display(s), %s\n",
			status.LastSnapshotCount, formatAge(now.Sub(*status.LastSnapshotAt)))
	}
	fmt.Fprintf(w, "uptime:        %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())

	if len(status.Slots) == 0 {
		fmt.Fprintf(w, "saved:         %s\n", muted.Sprint("none"))
		return
	}
	fmt.Fprintln(w, "saved:")
	for _, slot := range status.Slots {
		fmt.Fprintf(w, "  %d display(s): %d window(s), %s\n",
			slot.DisplayCount, slot.Windows, formatAge(now.Sub(slot.SavedAt)))
	}
}

func printArrangements(w io.Writer, data *ipc.ArrangementsData) {
	if len(data.Arrangements) == 0 {
		fmt.Fprintln(w, "no saved arrangements")
		return
	}
	for i, a := range data.Arrangements {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (saved %s)\n",
			color.New(color.Bold).Sprintf("%d display(s)", a.DisplayCount),
			a.SavedAt.Local().Format(time.DateTime))
		for _, win := range a.Windows {
			fmt.Fprintf(w, "  0x%08x  %4dx%-4d at %d,%d  %s\n",
				win.ID, win.Width, win.Height, win.Left, win.Top, win.Title)
		}
	}
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm ago", int(d.Hours()), int(d.Minutes())%60)
	}
}
