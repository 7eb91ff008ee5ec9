package cli

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "Manage Wi-Fi locks",
}

var locksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List held locks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/locks", nil)
	},
}

var locksAcquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Acquire a lock and print its handle",
	Long: `Acquire a Wi-Fi lock. The handle must be renewed with "locks heartbeat"
before its lease expires or the lock is released.`,
	Args: cobra.NoArgs,
	RunE: runLocksAcquire,
}

var locksReleaseCmd = &cobra.Command{
	Use:   "release HANDLE",
	Short: "Release a lock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodDelete, "/locks/"+url.PathEscape(args[0]), nil)
	},
}

var locksHeartbeatCmd = &cobra.Command{
	Use:   "heartbeat HANDLE",
	Short: "Renew the lease of a lock handle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodPost, "/locks/"+url.PathEscape(args[0])+"/heartbeat", nil)
	},
}

var locksStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lock counters and the current op mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/locks/stats", nil)
	},
}

var locksUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize recorded lock usage per uid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/locks/usage", nil)
	},
}

func init() {
	locksAcquireCmd.Flags().String("mode", lock.ModeFullHighPerf.String(), "lock mode")
	locksAcquireCmd.Flags().String("tag", "", "lock tag")
	locksCmd.AddCommand(locksListCmd, locksAcquireCmd, locksReleaseCmd, locksHeartbeatCmd, locksStatsCmd, locksUsageCmd)
	rootCmd.AddCommand(locksCmd)
}

func runLocksAcquire(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("mode")
	tag, _ := cmd.Flags().GetString("tag")
	mode, err := lock.ParseMode(name)
	if err != nil {
		return err
	}
	return call(cmd, http.MethodPost, "/locks", map[string]interface{}{
		"mode": mode,
		"tag":  tag,
	})
}
