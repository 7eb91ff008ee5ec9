package cli

import "github.com/spf13/cobra"

var forceCmd = &cobra.Command{
	Use:   "force",
	Short: "Pin the op mode regardless of held locks (privileged)",
}

func init() {
	forceCmd.AddCommand(
		onOffCmd("hi-perf", "Force FULL_HIGH_PERF", "/modes/hi-perf", "enable"),
		onOffCmd("low-latency", "Force FULL_LOW_LATENCY", "/modes/low-latency", "enable"),
	)
	rootCmd.AddCommand(forceCmd)
}
