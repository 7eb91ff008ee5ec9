package cli

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

// onOffCmd builds a command that posts {field: on|off} to path.
func onOffCmd(use, short, path, field string) *cobra.Command {
	return &cobra.Command{
		Use:       use + " on|off",
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return call(cmd, http.MethodPost, path, map[string]bool{field: v})
		},
	}
}

var softApCmd = &cobra.Command{
	Use:   "softap on|off",
	Short: "Start or stop the hotspot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSoftAp,
}

func init() {
	softApCmd.Flags().String("ssid", "", "hotspot SSID")
	softApCmd.Flags().String("passphrase", "", "hotspot passphrase")
	softApCmd.Flags().String("band", "", "hotspot band")
	softApCmd.Flags().Int("channel", 0, "hotspot channel")

	rootCmd.AddCommand(
		onOffCmd("toggle", "Turn Wi-Fi on or off", "/wifi/toggle", "enable"),
		onOffCmd("airplane", "Turn airplane mode on or off", "/wifi/airplane", "on"),
		onOffCmd("scan-always", "Turn scan-always availability on or off", "/wifi/scan-always", "enabled"),
		softApCmd,
	)
}

func runSoftAp(cmd *cobra.Command, args []string) error {
	enable, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	body := map[string]interface{}{"enable": enable}
	if enable {
		ssid, _ := cmd.Flags().GetString("ssid")
		if ssid == "" {
			return errors.New("--ssid is required to start the hotspot")
		}
		cfg := &wifi.SoftApConfig{SSID: ssid}
		cfg.Passphrase, _ = cmd.Flags().GetString("passphrase")
		cfg.Band, _ = cmd.Flags().GetString("band")
		cfg.Channel, _ = cmd.Flags().GetInt("channel")
		body["config"] = cfg
	}
	return call(cmd, http.MethodPost, "/wifi/softap", body)
}
