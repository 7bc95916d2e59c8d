package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blogem/agility-auth/session"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newCLISession(ctx, cfg, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.CheckAuthStatus(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	state := s.State()
	if !state.IsAuthenticated {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}

	fmt.Fprintln(out, "Signed in.")
	if tokens := s.Tokens(ctx); tokens != nil && tokens.HasExpiry() {
		fmt.Fprintf(out, "Session expires at %s.\n", time.Unix(tokens.ExpiresAt, 0).Format(time.RFC1123))
	}
	if state.User != nil {
		fmt.Fprintf(out, "User: %s <%s>\n", state.User.DisplayName(), state.User.EmailAddress)
		fmt.Fprintf(out, "Websites: %d\n", len(state.WebsiteAccess))
	}
	return nil
}
