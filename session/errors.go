package session

import (
	"errors"
	"fmt"
)

var (
	ErrCancelled          = errors.New("authentication was cancelled by user")
	ErrPopupBlocked       = errors.New("authorization window could not be opened")
	ErrStateMismatch      = errors.New("authorization state does not match")
	ErrVerificationFailed = errors.New("authentication verification failed")
	ErrNoAccessToken      = errors.New("no valid access token available")
	ErrNoClient           = errors.New("management API client is not configured")
)

// Messages surfaced in State.Error
const (
	MsgCheckFailed       = "Failed to check authentication status"
	MsgCancelled         = "Authentication was cancelled by user"
	MsgPopupBlocked      = "Popup blocked. Please allow popups for this site."
	MsgAuthFailed        = "Authentication failed. Please try again."
	MsgSignOutFailed     = "Failed to sign out. Please try again."
	MsgLocaleFetchFailed = "Failed to fetch locales for selected website"
)

// ProviderError is an error reported by the authorization server through
// the popup
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization failed: %s", e.Code)
	}
	return fmt.Sprintf("authorization failed: %s: %s", e.Code, e.Description)
}

// authErrorMessage maps an Authenticate failure to its user-facing string
func authErrorMessage(err error) string {
	var providerErr *ProviderError
	switch {
	case errors.Is(err, ErrCancelled):
		return MsgCancelled
	case errors.Is(err, ErrPopupBlocked):
		return MsgPopupBlocked
	case errors.As(err, &providerErr) && providerErr.Description != "":
		return "Authentication failed: " + providerErr.Description
	default:
		return MsgAuthFailed
	}
}
