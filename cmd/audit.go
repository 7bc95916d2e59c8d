package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/blogem/agility-auth/database"
	"github.com/blogem/agility-auth/repositories"
)

var auditLimit int

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent sign in and sign out requests recorded by the server",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Number of entries to show")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := repositories.NewAuditRepository(db).ListRecent(cmd.Context(), auditLimit)
	if err != nil {
		return fmt.Errorf("failed to list audit log: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tEVENT\tSUBJECT\tREQUEST\tSTATUS\tIP")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%d\t%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.Event, e.Subject, e.Method, e.Path, e.StatusCode, e.IPAddress)
	}
	return tw.Flush()
}
