package session

import (
	"slices"

	"github.com/blogem/agility-auth/models"
)

// State is a snapshot of the authentication session.
// Empty strings stand for "none": Error == "" means no error and
// SelectedWebsite == "" means nothing is selected.
type State struct {
	IsAuthenticated  bool
	IsLoading        bool
	IsLoadingLocales bool
	Error            string
	User             *models.ServerUser
	WebsiteAccess    []models.WebsiteAccess
	SelectedWebsite  string
	SelectedLocale   string
	Locales          []models.LocaleInfo
}

// Selection names the selected website and locale
type Selection struct {
	WebsiteName string
	LocaleName  string
}

// InitialState is the logged-out state
func InitialState() State {
	return State{
		WebsiteAccess: []models.WebsiteAccess{},
		Locales:       []models.LocaleInfo{},
	}
}

// IsReady reports an authenticated session with nothing loading
func (s State) IsReady() bool {
	return s.IsAuthenticated && !s.IsLoading && !s.IsLoadingLocales
}

// IsAuthReady reports an authenticated session that is not authenticating
func (s State) IsAuthReady() bool {
	return s.IsAuthenticated && !s.IsLoading
}

// HasSelection reports whether both a website and a locale are selected
func (s State) HasSelection() bool {
	return s.SelectedWebsite != "" && s.SelectedLocale != ""
}

// CurrentSelection resolves the selection to display names, or nil
func (s State) CurrentSelection() *Selection {
	if !s.HasSelection() {
		return nil
	}

	wi := slices.IndexFunc(s.WebsiteAccess, func(w models.WebsiteAccess) bool {
		return w.WebsiteGUID == s.SelectedWebsite
	})
	li := slices.IndexFunc(s.Locales, func(l models.LocaleInfo) bool {
		return l.LocaleCode == s.SelectedLocale
	})
	if wi < 0 || li < 0 {
		return nil
	}

	return &Selection{
		WebsiteName: s.WebsiteAccess[wi].WebsiteName,
		LocaleName:  s.Locales[li].LocaleName,
	}
}

// clone copies the slices so snapshots never alias controller state
func (s State) clone() State {
	s.WebsiteAccess = slices.Clone(s.WebsiteAccess)
	s.Locales = slices.Clone(s.Locales)
	return s
}
