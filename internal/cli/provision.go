package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Start Passpoint online sign-up with a provider",
	Args:  cobra.NoArgs,
	RunE:  runProvision,
}

var provisionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the provisioning stage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/provisioning/status", nil)
	},
}

func init() {
	provisionCmd.Flags().String("friendly-name", "", "provider friendly name")
	provisionCmd.Flags().String("server-uri", "", "OSU server URI")
	provisionCmd.Flags().String("osu-ssid", "", "OSU network SSID")
	provisionCmd.Flags().String("nai", "", "OSU NAI")
	provisionCmd.Flags().IntSlice("method", nil, "supported OSU methods")
	provisionCmd.AddCommand(provisionStatusCmd)
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	var p provisioning.Provider
	p.FriendlyName, _ = cmd.Flags().GetString("friendly-name")
	p.ServerURI, _ = cmd.Flags().GetString("server-uri")
	p.OsuSSID, _ = cmd.Flags().GetString("osu-ssid")
	p.NAI, _ = cmd.Flags().GetString("nai")
	p.Methods, _ = cmd.Flags().GetIntSlice("method")
	if err := p.Validate(); err != nil {
		return err
	}
	return call(cmd, http.MethodPost, "/provisioning", p)
}
