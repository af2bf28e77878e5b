package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"igauth/pkg/auth"
	"igauth/pkg/logger"
)

var tokenDeleteAll bool

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage stored access tokens",
	Long: `Manage access tokens stored by 'igauth authorize' and 'igauth serve'.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - IGAUTH_ACCESS_TOKEN (read-only)`,
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tokens with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runTokenList,
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete [username]",
	Short: "Delete a stored token",
	Example: `  igauth token delete snoopdogg
  igauth token delete --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenDelete,
}

func init() {
	tokenDeleteCmd.Flags().BoolVar(&tokenDeleteAll, "all", false, "delete every stored token")
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
	rootCmd.AddCommand(tokenCmd)
}

func tokenManager(cmd *cobra.Command) (*auth.Manager, error) {
	if _, err := loadConfig(cmd, nil); err != nil {
		return nil, err
	}
	manager, err := auth.NewManager(logger.GetLogger().WithField("component", "auth"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}
	return manager, nil
}

func runTokenList(cmd *cobra.Command, args []string) error {
	manager, err := tokenManager(cmd)
	if err != nil {
		return err
	}

	records, err := manager.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		out.Warning("No stored tokens. Run 'igauth authorize' to obtain one.")
		return nil
	}

	now := time.Now()
	for _, rec := range records {
		s := auth.SanitizeRecord(rec)
		out.Println()
		out.Info("User", s.Key())
		if s.UserID != "" && s.UserID != s.Key() {
			out.Info("User ID", s.UserID)
		}
		out.Info("Token", s.AccessToken)
		out.Info("Obtained", s.ObtainedAt.Format(time.RFC3339))
		if exp := s.ExpiresAt(); !exp.IsZero() {
			status := exp.Format(time.RFC3339)
			if s.Expired(now) {
				status += " (expired)"
			}
			out.Info("Expires", status)
		}
	}
	return nil
}

func runTokenDelete(cmd *cobra.Command, args []string) error {
	if tokenDeleteAll == (len(args) == 1) {
		return errors.New("give either a username or --all")
	}

	manager, err := tokenManager(cmd)
	if err != nil {
		return err
	}

	if tokenDeleteAll {
		if err := manager.DeleteAll(); err != nil {
			return err
		}
		out.Success("All stored tokens deleted")
		return nil
	}

	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	out.Success(fmt.Sprintf("Token for %s deleted", args[0]))
	return nil
}
