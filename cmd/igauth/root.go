package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igauth/pkg/config"
	"igauth/pkg/logger"
	"igauth/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile   string
	logLevel     string
	clientID     string
	clientSecret string
	redirectURL  string
	scopes       []string

	out = ui.Stdout()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igauth",
	Short: "Instagram OAuth2 client and API wrapper",
	Long: `igauth authorizes against Instagram with the OAuth2 authorization-code
flow and calls the REST API with the resulting access token.

Obtained tokens are stored in the system keychain when available, otherwise
in an encrypted file under the igauth config directory.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		out.Error("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.igauth.yaml or "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	rootCmd.PersistentFlags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	rootCmd.PersistentFlags().StringVar(&redirectURL, "redirect-url", "", "registered redirect URL")
	rootCmd.PersistentFlags().StringSliceVar(&scopes, "scopes", nil, "requested scopes (comma separated)")

	rootCmd.SetVersionTemplate(`igauth {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// flagOverrides collects the global flags the user actually set.
func flagOverrides(cmd *cobra.Command, extra map[string]interface{}) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[name] = value
		}
	}
	set("client-id", clientID)
	set("client-secret", clientSecret)
	set("redirect-url", redirectURL)
	set("scopes", scopes)
	set("log-level", logLevel)
	for k, v := range extra {
		flags[k] = v
	}
	return flags
}

// loadConfig loads the layered configuration and initializes the global
// logger from it. Validation is left to the caller.
func loadConfig(cmd *cobra.Command, extra map[string]interface{}) (*config.Config, error) {
	cfg, err := config.LoadUnvalidated(configFile, flagOverrides(cmd, extra))
	if err != nil {
		return nil, err
	}

	logger.Version = version
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
