package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blogem/agility-auth/config"
)

// Global flags
var (
	logLevel  string
	logFormat string
	envFile   string
)

// cfg is loaded before any subcommand runs
var cfg *config.Config

// rootCmd represents the base command for the agility-auth application
var rootCmd = &cobra.Command{
	Use:   "agility-auth",
	Short: "Sign in to Agility and manage the resulting session",
	Long: `agility-auth runs the Agility OAuth authorization-code flow.

It can serve the web login panel with cookie backed sessions, or run the
same popup flow from the terminal with a local callback listener and keep
the tokens in a local SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console or json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file to load")

	rootCmd.AddCommand(serveCmd, loginCmd, statusCmd, logoutCmd, websitesCmd, localesCmd, auditCmd)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initialize(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(envFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return setupLogging(cmd.ErrOrStderr(), level, logFormat)
}

// setupLogging configures the global zerolog logger
func setupLogging(out io.Writer, level, format string) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	switch format {
	case "json":
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	case "console", "":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}
