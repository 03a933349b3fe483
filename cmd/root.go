/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moamenhredeen/reqcheck/internal/config"
	"github.com/moamenhredeen/reqcheck/internal/logging"
)

var (
	cfgFile string

	appConfig *config.Config
	logger    *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reqcheck",
	Short: "Run HTTP request suites and check the responses",
	Long: `reqcheck sends HTTP requests described in a suite file, checks each
response against declarative assertions (status code, body, headers,
JSON paths, response time) and records a pass/fail report.

Suites are YAML or JSON files. You can write them by hand or generate a
starting point from an OpenAPI document with "reqcheck import".`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initConfig()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	appConfig = cfg
	logger = logging.New(cfg.Log, os.Stderr)
	logger.Debug("config loaded", "file", viper.ConfigFileUsed(), "concurrency", cfg.Concurrency, "timeout", cfg.Timeout)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./reqcheck.toml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}
