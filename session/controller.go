// Package session drives the popup-based authorization-code flow and keeps
// the reducer state that UI consumers render.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/authenticator"
	"github.com/blogem/agility-auth/config"
	"github.com/blogem/agility-auth/mgmtapi"
	"github.com/blogem/agility-auth/models"
)

// DefaultPollInterval is how often an open popup is checked for closure
const DefaultPollInterval = time.Second

// Auth is the part of the OAuth endpoint adapter the controller drives
type Auth interface {
	GenerateAuthURL(params authenticator.AuthURLParams) string
	GenerateState() (string, error)
	ExchangeCodeForToken(ctx context.Context, params authenticator.ExchangeParams) (*models.StoredTokenData, error)
	Tokens(ctx context.Context) *models.StoredTokenData
	IsAuthenticated(ctx context.Context) bool
	GetValidAccessToken(ctx context.Context) string
	ClearAuthentication(ctx context.Context)
}

var _ Auth = (*authenticator.Authenticator)(nil)

// Options configures a Controller
type Options struct {
	RedirectURI  string
	Scope        string
	Region       string
	PollInterval time.Duration
	// RevokeOnSignOut asks the management API to end the session before
	// local tokens are cleared
	RevokeOnSignOut bool
	// OnChange is called with every new state snapshot
	OnChange func(State)
}

// Controller owns the session state. Its methods are safe for concurrent
// use, though Authenticate is meant to run once at a time.
type Controller struct {
	auth    Auth
	clients mgmtapi.Factory
	opener  Opener
	opts    Options

	mu    sync.Mutex
	state State

	background sync.WaitGroup
}

// NewController creates a controller in the logged-out state
func NewController(auth Auth, clients mgmtapi.Factory, opener Opener, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Scope == "" {
		opts.Scope = config.DefaultScope
	}

	return &Controller{
		auth:    auth,
		clients: clients,
		opener:  opener,
		opts:    opts,
		state:   InitialState(),
	}
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Dispatch applies actions in order and notifies OnChange once
func (c *Controller) Dispatch(actions ...Action) {
	c.dispatchWhen(nil, actions...)
}

// dispatchWhen applies actions only if cond holds for the current state.
// The check and the update happen under one lock.
func (c *Controller) dispatchWhen(cond func(State) bool, actions ...Action) bool {
	c.mu.Lock()
	if cond != nil && !cond(c.state) {
		c.mu.Unlock()
		return false
	}
	for _, action := range actions {
		c.state = Reduce(c.state, action)
	}
	snapshot := c.state.clone()
	c.mu.Unlock()

	if c.opts.OnChange != nil {
		c.opts.OnChange(snapshot)
	}
	return true
}

// Wait blocks until background user-info fetches have finished
func (c *Controller) Wait() {
	c.background.Wait()
}

// CheckAuthStatus re-derives the authenticated flag from the token store.
// When authenticated it also loads the user; a failed load leaves the
// session authenticated.
func (c *Controller) CheckAuthStatus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		c.Dispatch(SetError{Message: MsgCheckFailed})
		return fmt.Errorf("check auth status: %w", err)
	}

	if !c.refreshAuthStatus(ctx) {
		log.Debug().Msg("Session is not authenticated")
		return nil
	}

	c.FetchUserInfo(ctx)
	return nil
}

func (c *Controller) refreshAuthStatus(ctx context.Context) bool {
	if c.auth.IsAuthenticated(ctx) {
		c.Dispatch(SetAuthenticated{Authenticated: true})
		return true
	}

	c.Dispatch(
		SetAuthenticated{Authenticated: false},
		SetUser{User: nil},
		SetWebsiteAccess{Websites: nil},
	)
	return false
}

// FetchUserInfo loads the user and their websites. Failures are logged and
// clear the user; they never change the authenticated flag.
func (c *Controller) FetchUserInfo(ctx context.Context) {
	client, err := c.APIClient(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping user info fetch")
		return
	}

	user, err := client.Me(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch user info")
		c.Dispatch(SetUser{User: nil}, SetWebsiteAccess{Websites: nil})
		return
	}

	log.Debug().Str("user", user.DisplayName()).Int("websites", len(user.WebsiteAccess)).Msg("User fetched")
	c.Dispatch(SetUser{User: user}, SetWebsiteAccess{Websites: models.WebsitesFromUser(user)})
}

// Authenticate runs the popup flow. The returned error is also surfaced
// as a user-facing string in State.Error.
func (c *Controller) Authenticate(ctx context.Context) error {
	c.Dispatch(SetLoading{Loading: true}, ClearError{})
	defer c.Dispatch(SetLoading{Loading: false})

	if err := c.authenticate(ctx); err != nil {
		log.Error().Err(err).Msg("Authentication failed")
		c.Dispatch(SetError{Message: authErrorMessage(err)})
		return err
	}

	log.Info().Msg("Authentication completed successfully")
	return nil
}

func (c *Controller) authenticate(ctx context.Context) error {
	if c.opener == nil {
		return fmt.Errorf("%w: no opener configured", ErrPopupBlocked)
	}

	state, err := c.auth.GenerateState()
	if err != nil {
		return fmt.Errorf("generate state: %w", err)
	}

	authURL := c.auth.GenerateAuthURL(authenticator.AuthURLParams{
		RedirectURI: c.opts.RedirectURI,
		Scope:       c.opts.Scope,
		Region:      c.opts.Region,
		State:       state,
	})

	popup, err := c.opener.Open(ctx, authURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}

	msg, err := waitForMessage(ctx, popup, c.opts.PollInterval)
	if err != nil {
		return err
	}

	switch msg.Type {
	case MessageSuccess:
	case MessageError:
		return &ProviderError{Code: msg.Error, Description: msg.ErrorDescription}
	default:
		return fmt.Errorf("unexpected authorization message %q", msg.Type)
	}

	if msg.State != state {
		return ErrStateMismatch
	}

	if _, err := c.auth.ExchangeCodeForToken(ctx, authenticator.ExchangeParams{
		Code:        msg.Code,
		RedirectURI: c.opts.RedirectURI,
		Region:      c.opts.Region,
	}); err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	if !c.refreshAuthStatus(ctx) {
		return ErrVerificationFailed
	}

	// User info is optional; the flow does not wait for it
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.FetchUserInfo(context.WithoutCancel(ctx))
	}()

	return nil
}

// SignOut clears the tokens and resets the state. It never fails; a
// rejected remote sign-out is only logged.
func (c *Controller) SignOut(ctx context.Context) {
	if c.opts.RevokeOnSignOut {
		if client, err := c.APIClient(ctx); err == nil {
			if err := client.SignOut(ctx); err != nil {
				log.Warn().Err(err).Msg("Remote sign out failed")
			}
		}
	}

	c.auth.ClearAuthentication(ctx)
	c.Dispatch(SignOut{})

	if c.auth.Tokens(ctx) != nil {
		log.Error().Msg("Tokens are still stored after sign out")
		c.Dispatch(SetError{Message: MsgSignOutFailed})
	}
}

// SelectWebsite selects a website and loads its locales. The previous
// locale selection is cleared before the fetch starts. On failure the
// website stays selected with no locales.
func (c *Controller) SelectWebsite(ctx context.Context, websiteGUID string) error {
	if websiteGUID == "" {
		c.Dispatch(SetSelectedWebsite{GUID: websiteGUID})
		return nil
	}

	c.Dispatch(SetSelectedWebsite{GUID: websiteGUID}, SetLoadingLocales{Loading: true}, ClearError{})

	locales, err := c.fetchLocales(ctx, websiteGUID)
	if err != nil {
		log.Error().Err(err).Str("website", websiteGUID).Msg("Failed to fetch locales")
		c.dispatchForWebsite(websiteGUID, SetLoadingLocales{Loading: false}, SetError{Message: MsgLocaleFetchFailed})
		return err
	}

	c.dispatchForWebsite(websiteGUID, SetLocales{Website: websiteGUID, Locales: locales}, SetLoadingLocales{Loading: false})
	return nil
}

// dispatchForWebsite applies actions only while websiteGUID is still
// selected, so a late fetch cannot touch a newer selection
func (c *Controller) dispatchForWebsite(websiteGUID string, actions ...Action) {
	stillSelected := func(s State) bool { return s.SelectedWebsite == websiteGUID }
	if !c.dispatchWhen(stillSelected, actions...) {
		log.Debug().Str("website", websiteGUID).Msg("Dropping locale result for a deselected website")
	}
}

func (c *Controller) fetchLocales(ctx context.Context, websiteGUID string) ([]models.LocaleInfo, error) {
	client, err := c.APIClient(ctx)
	if err != nil {
		return nil, err
	}

	locales, err := client.GetLocales(ctx, websiteGUID)
	if err != nil {
		return nil, fmt.Errorf("get locales: %w", err)
	}
	return locales, nil
}

// SelectLocale selects a locale of the selected website
func (c *Controller) SelectLocale(localeCode string) {
	c.Dispatch(SetSelectedLocale{Code: localeCode})
}

// ClearError drops the current error message
func (c *Controller) ClearError() {
	c.Dispatch(ClearError{})
}

// Tokens returns the stored tokens, or nil
func (c *Controller) Tokens(ctx context.Context) *models.StoredTokenData {
	return c.auth.Tokens(ctx)
}

// APIClient returns a management API client bound to the current token
func (c *Controller) APIClient(ctx context.Context) (mgmtapi.Client, error) {
	if c.clients == nil {
		return nil, ErrNoClient
	}

	token := c.auth.GetValidAccessToken(ctx)
	if token == "" {
		return nil, ErrNoAccessToken
	}
	return c.clients(token), nil
}

// IsCancelled reports whether err ended the flow because the window closed
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
