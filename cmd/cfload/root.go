package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	flagURI      string
	flagWarm     bool
	flagTargets  []string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "cfload",
	Short: "Flash Crazyflie firmware bundles over a bootloader link",
	Long: `cfload drives a Crazyflie bootloader session: it negotiates protocol
and flash geometry, streams firmware bundles onto the flight controller, and
restores the craft to application mode when it is done. It has no
application-mode client, so it does not update decks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.cfload.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagURI, "uri", "", "known bootloader link URI, skips passive discovery")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("uri", rootCmd.PersistentFlags().Lookup("uri"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(flashCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".cfload")
		}
	}

	viper.SetEnvPrefix("CFLOAD")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
