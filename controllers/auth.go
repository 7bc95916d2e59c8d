package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitea.com/go-chi/session"
	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/authenticator"
	"github.com/blogem/agility-auth/config"
	"github.com/blogem/agility-auth/models"
	authsession "github.com/blogem/agility-auth/session"
)

const stateSessionKey = "oauth_state"

// AuthController serves the popup login flow and the token routes
type AuthController struct {
	auth        *authenticator.Authenticator
	redirectURI string
	scope       string
	region      string
}

// NewAuthController creates a new auth controller
func NewAuthController(auth *authenticator.Authenticator, cfg *config.Config) *AuthController {
	return &AuthController{
		auth:        auth,
		redirectURI: cfg.ServerRedirectURI(),
		scope:       cfg.Scope,
		region:      cfg.Region,
	}
}

type exchangeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
	Region      string `json:"region"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type statusResponse struct {
	Authenticated bool  `json:"authenticated"`
	ExpiresAt     int64 `json:"expiresAt,omitempty"`
}

var successResponse = map[string]bool{"success": true}

// Login handles GET /api/auth/login. It opens the authorization window
// flow by storing a fresh state and redirecting to the provider.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	state, err := ac.auth.GenerateState()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate state")
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	// Save the state in the session to validate in callback
	sess := session.GetSession(r)
	if err := sess.Set(stateSessionKey, state); err != nil {
		log.Error().Err(err).Msg("Failed to store state")
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	region := r.URL.Query().Get("region")
	if region == "" {
		region = ac.region
	}

	authURL := ac.auth.GenerateAuthURL(authenticator.AuthURLParams{
		RedirectURI: ac.redirectURI,
		Scope:       ac.scope,
		Region:      region,
		State:       state,
	})
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// CallbackPage handles GET /auth-callback, the page the authorization
// window lands on. It posts the outcome to the opening window.
func (ac *AuthController) CallbackPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	msg := authsession.Message{
		Type:  authsession.MessageSuccess,
		Code:  query.Get("code"),
		State: query.Get("state"),
	}

	sess := session.GetSession(r)
	storedState, _ := sess.Get(stateSessionKey).(string)
	if err := sess.Delete(stateSessionKey); err != nil {
		log.Warn().Err(err).Msg("Failed to clear state from session")
	}

	switch {
	case query.Get("error") != "":
		msg = authsession.Message{
			Type:             authsession.MessageError,
			Error:            query.Get("error"),
			ErrorDescription: query.Get("error_description"),
		}
	case storedState == "" || msg.State != storedState:
		log.Warn().Msg("Authorization callback state does not match")
		msg = authsession.Message{
			Type:             authsession.MessageError,
			Error:            "invalid_state",
			ErrorDescription: "authorization state does not match",
		}
	case msg.Code == "":
		msg = authsession.Message{
			Type:             authsession.MessageError,
			Error:            "invalid_request",
			ErrorDescription: "missing authorization code",
		}
	}

	heading := "Authentication Successful"
	status := http.StatusOK
	if msg.Type == authsession.MessageError {
		heading = "Authentication Failed"
		status = http.StatusBadRequest
	}

	data := struct {
		Heading string
		Message authsession.Message
	}{heading, msg}

	page := pageData("Signing in", data)
	if msg.ErrorDescription != "" {
		page.FlashMessage = &models.FlashMessage{Type: models.FlashError, Message: msg.ErrorDescription}
	}
	renderTemplateWithStatus(w, status, "callback.html", page)
}

// Exchange handles POST /api/auth/callback
func (ac *AuthController) Exchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode exchange request")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Authorization code is required"})
		return
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = ac.redirectURI
	}

	_, err := ac.auth.ExchangeCodeForToken(r.Context(), authenticator.ExchangeParams{
		Code:        req.Code,
		RedirectURI: redirectURI,
		Region:      req.Region,
	})

	var exchangeErr *authenticator.ExchangeError
	switch {
	case errors.As(err, &exchangeErr) && exchangeErr.StatusCode != 0:
		log.Error().Err(err).Int("status", exchangeErr.StatusCode).Msg("Token exchange failed")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Token exchange failed", Details: exchangeErr.Body})
	case err != nil:
		log.Error().Err(err).Msg("Auth callback error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	default:
		log.Info().Str("region", req.Region).Msg("Token exchange successful")
		writeJSON(w, http.StatusOK, successResponse)
	}
}

// SignOut handles DELETE /api/auth/callback
func (ac *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	ac.auth.ClearAuthentication(r.Context())
	writeJSON(w, http.StatusOK, successResponse)
}

// Status handles GET /api/auth/status
func (ac *AuthController) Status(w http.ResponseWriter, r *http.Request) {
	if !ac.auth.IsAuthenticated(r.Context()) {
		writeJSON(w, http.StatusOK, statusResponse{Authenticated: false})
		return
	}

	tokens := ac.auth.Tokens(r.Context())
	writeJSON(w, http.StatusOK, statusResponse{Authenticated: true, ExpiresAt: tokens.ExpiresAt})
}
