package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igauth/pkg/config"
	"igauth/pkg/logger"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igauth configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - IGAUTH_* environment variables (also read from .env and ~/.igauth.env)
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: `Write the default configuration, plus any values given as flags, to the
--config path or ` + config.DefaultPath() + `. Existing files are not overwritten.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration merged from all sources, with the client secret masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flagOverrides(cmd, nil))
	if err := cfg.Save(path); err != nil {
		return err
	}

	out.Success("Configuration written to " + path)
	if cfg.Instagram.ClientID == "" {
		out.Hint("Set instagram.client_id, client_secret and redirect_url before running 'igauth authorize'.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	shown := *cfg
	if shown.Instagram.ClientSecret != "" {
		shown.Instagram.ClientSecret = logger.Redact(shown.Instagram.ClientSecret)
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	out.Success("Configuration is valid")
	return nil
}
