package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "wifictl",
	Short: "Control the Wi-Fi mode controller",
	Long: `wifictl talks to a running wifictl server: it holds Wi-Fi locks,
toggles the radio and reports controller state.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/wifictl/config.yaml)")
	rootCmd.PersistentFlags().String("server", "http://127.0.0.1:8080", "server base URL")
	rootCmd.PersistentFlags().String("token", "", "privileged bearer token")
	rootCmd.PersistentFlags().Int("uid", 0, "caller uid")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("uid", rootCmd.PersistentFlags().Lookup("uid"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.config/wifictl")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WIFICTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// A missing config file is fine; flags and env still apply.
	_ = viper.ReadInConfig()
}

// parseOnOff accepts on/off as well as anything strconv.ParseBool does.
func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "enable", "enabled":
		return true, nil
	case "off", "disable", "disabled":
		return false, nil
	}
	v, err := strconv.ParseBool(arg)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", arg)
	}
	return v, nil
}
