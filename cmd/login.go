package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blogem/agility-auth/session"
)

var loginForce bool

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser",
	Long: `Sign in to Agility using the authorization-code flow.

The authorization page opens in your browser and the redirect is received
on CALLBACK_ADDR. Visit /cancel on that address to abort.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "Sign in again even when a valid session exists")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newCLISession(ctx, cfg, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	if !loginForce {
		if err := s.CheckAuthStatus(ctx); err == nil && s.State().IsAuthenticated {
			fmt.Fprintln(cmd.OutOrStdout(), "Already signed in. Use --force to sign in again.")
			return nil
		}
	}

	if err := s.Authenticate(ctx); err != nil {
		if session.IsCancelled(err) {
			return fmt.Errorf("sign in was cancelled")
		}
		return fmt.Errorf("%s: %w", s.State().Error, err)
	}
	s.Wait()

	state := s.State()
	if state.User != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s with access to %d website(s).\n", state.User.DisplayName(), len(state.WebsiteAccess))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
	return nil
}
