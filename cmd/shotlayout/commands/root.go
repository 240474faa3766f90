package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryanchriswhite/shotlayout/internal/config"
	"github.com/bryanchriswhite/shotlayout/internal/logger"
)

var (
	cfgFile string
	pretty  bool
	rootCmd = &cobra.Command{
		Use:   "shotlayout",
		Short: "shotlayout - three finger pull-down screenshots for a host window",
		Long: `shotlayout attaches a screenshot overlay to a host window. Pulling down
with three fingers fills a progress ring; releasing at full progress captures
the window contents, flashes the overlay and shares the image by mail.

Features:
  • Gesture recognition that leaves host scrolling untouched
  • Pixel exact capture without the overlay's own decoration
  • PNG persistence and a mail composer share flow
  • Desktop notifications for failures
  • Browser demo with live MJPEG stream and pointer input
  • Scripted replay of pointer sequences`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := viper.GetString("log_level")
			if level == "" {
				level = "info"
			}
			logger.Init(level, pretty)
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shotlayout/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (default is 8080)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "human readable console logs")

	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetEnvPrefix("SHOTLAYOUT")
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig opens the configuration and applies flag overrides without
// saving them.
func loadConfig() (*config.Manager, *config.Config, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configMgr.Get()
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			cfg.ServerPort = port
		}
	}
	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			cfg.LogLevel = level
		}
	} else {
		logger.Init(cfg.LogLevel, pretty)
	}
	return configMgr, cfg, nil
}
