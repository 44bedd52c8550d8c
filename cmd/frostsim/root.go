package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set by the linker.
var (
	Version = "dev"
	Commit  = ""
)

func NewRootCmd() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:           "frostsim",
		Short:         "Simulate FROST key generation and Taproot signing in one process",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (json, yaml or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")

	InitRootCmd(rootCmd, v)
	return rootCmd
}
