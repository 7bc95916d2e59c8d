package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/blogem/agility-auth/session"
)

// websitesCmd represents the websites command
var websitesCmd = &cobra.Command{
	Use:   "websites",
	Short: "List the websites you can access",
	RunE:  runWebsites,
}

// localesCmd represents the locales command
var localesCmd = &cobra.Command{
	Use:   "locales <website-guid>",
	Short: "List the locales of a website",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocales,
}

func runWebsites(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newCLISession(ctx, cfg, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := requireSession(ctx, s); err != nil {
		return err
	}

	state := s.State()
	if state.User == nil {
		return fmt.Errorf("could not load your user profile")
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GUID\tNAME\tDESCRIPTION")
	for _, website := range state.WebsiteAccess {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", website.WebsiteGUID, website.WebsiteName, website.WebsiteDescription)
	}
	return tw.Flush()
}

func runLocales(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := newCLISession(ctx, cfg, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := requireSession(ctx, s); err != nil {
		return err
	}

	if err := s.SelectWebsite(ctx, args[0]); err != nil {
		return fmt.Errorf("%s: %w", s.State().Error, err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tDEFAULT\tENABLED")
	for _, locale := range s.State().Locales {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", locale.LocaleCode, locale.LocaleName, locale.IsDefault, locale.IsEnabled)
	}
	return tw.Flush()
}
