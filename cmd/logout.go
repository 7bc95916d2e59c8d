package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blogem/agility-auth/session"
)

var logoutRevoke bool

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutRevoke, "revoke", false, "Ask the management API to end the session first")
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newCLISession(ctx, cfg, session.Options{RevokeOnSignOut: logoutRevoke})
	if err != nil {
		return err
	}
	defer s.Close()

	s.SignOut(ctx)
	if msg := s.State().Error; msg != "" {
		return fmt.Errorf("%s", msg)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}
