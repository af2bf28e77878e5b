package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"igauth/pkg/auth"
	"igauth/pkg/logger"
	"igauth/pkg/oauth"
)

var (
	whoamiToken string
	whoamiUser  string
	whoamiJSON  bool
)

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user an access token belongs to",
	Long: `Fetch users/self with an access token: the one given with --token, the
one stored for --user, or the most recently stored one.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

func init() {
	whoamiCmd.Flags().StringVar(&whoamiToken, "token", "", "access token to use")
	whoamiCmd.Flags().StringVar(&whoamiUser, "user", "", "stored token to use")
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "print the identity as JSON")
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	manager, err := auth.NewManager(logger.GetLogger().WithField("component", "auth"))
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}
	token, err := resolveToken(manager, whoamiToken, whoamiUser)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	identity, err := oauth.FetchIdentity(ctx, newProvider(cfg), token)
	if err != nil {
		return err
	}

	if whoamiJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(identity.JSON())
	}
	printIdentity(identity)
	return nil
}
