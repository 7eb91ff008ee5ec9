package cli

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Report device events (privileged)",
}

var batteryCmd = &cobra.Command{
	Use:   "battery PLUGGED",
	Short: "Report the charger type bitmask (1 AC, 2 USB, 4 wireless)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plugged, err := strconv.Atoi(args[0])
		if err != nil || plugged < 0 || plugged > 7 {
			return fmt.Errorf("plugged must be between 0 and 7, got %q", args[0])
		}
		return call(cmd, http.MethodPost, "/device/battery", map[string]int{"plugged": plugged})
	},
}

func postCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, http.MethodPost, path, nil)
		},
	}
}

func init() {
	deviceCmd.AddCommand(
		onOffCmd("screen", "Report the screen turning on or off", "/device/screen", "on"),
		batteryCmd,
		postCmd("idle", "Report that the device went idle", "/device/idle"),
		postCmd("user-present", "Report that the user unlocked the device", "/device/user-present"),
	)
	rootCmd.AddCommand(deviceCmd)
}
