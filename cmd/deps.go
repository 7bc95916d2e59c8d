package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/authenticator"
	"github.com/blogem/agility-auth/config"
	"github.com/blogem/agility-auth/database"
	"github.com/blogem/agility-auth/mgmtapi"
	"github.com/blogem/agility-auth/repositories"
	"github.com/blogem/agility-auth/session"
)

// mgmtBaseURL is the management API host for the configured region
func mgmtBaseURL(cfg *config.Config) string {
	if cfg.MgmtAPIURL != "" {
		return cfg.MgmtAPIURL
	}
	return authenticator.BaseURLForRegion(cfg.Region)
}

// cliSession is a session controller backed by the local token database
type cliSession struct {
	*session.Controller
	db *sql.DB
}

func (s *cliSession) Close() {
	s.Wait()
	if err := s.db.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
	}
}

// newCLISession wires the popup flow to the system browser and stores
// tokens in SQLite so later commands can reuse them
func newCLISession(ctx context.Context, cfg *config.Config, opts session.Options) (*cliSession, error) {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	repos := repositories.NewRepositories(db)

	provider, err := authenticator.NewProvider(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	auth := authenticator.New(provider, repos.Tokens)

	opts.RedirectURI = cfg.CLIRedirectURI()
	opts.Scope = cfg.Scope
	opts.Region = cfg.Region

	opener := &session.LoopbackOpener{Addr: cfg.CallbackAddr}
	controller := session.NewController(auth, mgmtapi.NewFactory(mgmtBaseURL(cfg), nil), opener, opts)

	return &cliSession{Controller: controller, db: db}, nil
}

// requireSession loads the stored session and fails when it is not usable
func requireSession(ctx context.Context, s *cliSession) error {
	if err := s.CheckAuthStatus(ctx); err != nil {
		return err
	}
	if !s.State().IsAuthenticated {
		return fmt.Errorf("not signed in, run 'agility-auth login' first")
	}
	return nil
}
