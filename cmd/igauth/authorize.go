package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"igauth/pkg/auth"
	"igauth/pkg/logger"
	"igauth/pkg/oauth"
	"igauth/pkg/session"
	"igauth/pkg/ui"
)

var (
	authorizeStateless bool
	authorizeOpen      bool
	authorizeNoSave    bool
)

// authorizeCmd represents the authorize command
var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Authorize igauth and store the access token",
	Long: `Run the authorization-code flow from the terminal.

The authorization URL is printed (and optionally opened in a browser). After
approving access, paste the URL Instagram redirected to, or just the code.
The state in the pasted URL must match the one generated for this run unless
--stateless is given.`,
	Example: `  igauth authorize --client-id abc --redirect-url http://localhost:8080/callback
  igauth authorize --stateless --open`,
	Args: cobra.NoArgs,
	RunE: runAuthorize,
}

func init() {
	authorizeCmd.Flags().BoolVar(&authorizeStateless, "stateless", false, "skip state generation and verification")
	authorizeCmd.Flags().BoolVar(&authorizeOpen, "open", false, "open the authorization URL in a browser")
	authorizeCmd.Flags().BoolVar(&authorizeNoSave, "no-save", false, "print the token without storing it")
	rootCmd.AddCommand(authorizeCmd)
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]interface{}{"stateless": authorizeStateless})
	if err != nil {
		return err
	}

	prompter := ui.StdPrompter()
	if err := ensureSecret(cfg, prompter); err != nil {
		return err
	}

	flow, err := newFlow(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The pending state only has to live for this process.
	store := session.NewMemoryStore()

	redirect, err := flow.Authenticate(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to build authorization URL: %w", err)
	}

	out.Highlight("Open this URL to authorize igauth:")
	out.Println(redirect.URL)
	if authorizeOpen {
		if err := ui.NewBrowserOpener().Open(redirect.URL); err != nil {
			out.Warning("Could not open a browser: " + err.Error())
		}
	}

	input, err := prompter.Line(callbackPrompt(flow.IsStateless()))
	if err != nil {
		return fmt.Errorf("failed to read callback: %w", err)
	}
	cb, err := parseCallbackInput(input, flow.IsStateless())
	if err != nil {
		return err
	}

	identity, err := flow.RetrieveUser(ctx, store, cb)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	printIdentity(identity)

	if authorizeNoSave {
		out.Info("Access token", identity.AccessToken)
		return nil
	}
	return saveIdentity(identity, cfg.Instagram.Scopes)
}

func saveIdentity(identity *oauth.Identity, scopes []string) error {
	rec, err := auth.RecordFromIdentity(identity, scopes, time.Now())
	if err != nil {
		return err
	}

	manager, err := auth.NewManager(logger.GetLogger().WithField("component", "auth"))
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}
	if err := manager.Save(rec); err != nil {
		return err
	}

	out.Success(fmt.Sprintf("Access token stored for %s", rec.Key()))
	return nil
}

func printIdentity(id *oauth.Identity) {
	out.Info("User ID", id.ID)
	optional := []struct {
		label string
		value *string
	}{
		{"Username", id.Username},
		{"Full name", id.FullName},
		{"Email", id.Email},
		{"Profile picture", id.ProfilePictureURL},
		{"Website", id.Website},
	}
	for _, f := range optional {
		if f.value != nil && *f.value != "" {
			out.Info(f.label, *f.value)
		}
	}
}
