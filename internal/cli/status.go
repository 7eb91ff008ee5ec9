package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show controller state",
	Long:  `Display the controller state, the persisted Wi-Fi setting and the strongest lock mode.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/wifi/status", nil)
	},
}

var transitionsCmd = &cobra.Command{
	Use:   "transitions",
	Short: "List recent controller state transitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return call(cmd, http.MethodGet, fmt.Sprintf("/wifi/transitions?limit=%d", limit), nil)
	},
}

func init() {
	transitionsCmd.Flags().Int("limit", 50, "maximum transitions to show")
	rootCmd.AddCommand(statusCmd, transitionsCmd)
}
