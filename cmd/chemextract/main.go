// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the chemextract CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the chemextract CLI.
var rootCmd = &cobra.Command{
	Use:   "chemextract",
	Short: "Extract structured chemical property records from papers",
	Long: `chemextract reads papers in Markdown, matches grammar-based patterns
over their sentences, and produces structured property records: compounds,
melting points, boiling points. Records are written per paper and indexed
into a searchable SQLite knowledge base.

Each pipeline stage is a subcommand: extract runs the models over papers,
knowledge manages the record index.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./chemextract.yaml or ~/.config/chemextract/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("chemextract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "chemextract"))
		}
	}

	viper.SetEnvPrefix("CHEMEXTRACT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
