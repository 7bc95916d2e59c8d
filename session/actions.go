package session

import "github.com/blogem/agility-auth/models"

// Action is a state transition understood by Reduce
type Action interface {
	isAction()
}

type (
	SetLoading        struct{ Loading bool }
	SetLoadingLocales struct{ Loading bool }
	SetError          struct{ Message string }
	ClearError        struct{}
	SetAuthenticated  struct{ Authenticated bool }
	SetUser           struct{ User *models.ServerUser }
	SetWebsiteAccess  struct{ Websites []models.WebsiteAccess }
	// SetSelectedWebsite also clears the selected locale and the locale list
	SetSelectedWebsite struct{ GUID string }
	// SetSelectedLocale is dropped while no website is selected
	SetSelectedLocale struct{ Code string }
	// SetLocales is dropped when Website no longer matches the selection,
	// so a slow fetch cannot overwrite a newer website's locales
	SetLocales struct {
		Website string
		Locales []models.LocaleInfo
	}
	SignOut    struct{}
	ResetState struct{}
)

func (SetLoading) isAction()         {}
func (SetLoadingLocales) isAction()  {}
func (SetError) isAction()           {}
func (ClearError) isAction()         {}
func (SetAuthenticated) isAction()   {}
func (SetUser) isAction()            {}
func (SetWebsiteAccess) isAction()   {}
func (SetSelectedWebsite) isAction() {}
func (SetSelectedLocale) isAction()  {}
func (SetLocales) isAction()         {}
func (SignOut) isAction()            {}
func (ResetState) isAction()         {}

// Reduce returns the state that follows action. It never mutates state.
func Reduce(state State, action Action) State {
	next := state.clone()

	switch a := action.(type) {
	case SetLoading:
		next.IsLoading = a.Loading
	case SetLoadingLocales:
		next.IsLoadingLocales = a.Loading
	case SetError:
		next.Error = a.Message
	case ClearError:
		next.Error = ""
	case SetAuthenticated:
		next.IsAuthenticated = a.Authenticated
	case SetUser:
		// A user fetch that outlives a sign out must not repopulate the state
		if !next.IsAuthenticated && a.User != nil {
			return state
		}
		next.User = a.User
	case SetWebsiteAccess:
		if !next.IsAuthenticated && len(a.Websites) > 0 {
			return state
		}
		next.WebsiteAccess = nonNil(a.Websites)
	case SetSelectedWebsite:
		next.SelectedWebsite = a.GUID
		next.SelectedLocale = ""
		next.IsLoadingLocales = false
		next.Locales = []models.LocaleInfo{}
	case SetSelectedLocale:
		if next.SelectedWebsite == "" && a.Code != "" {
			return state
		}
		next.SelectedLocale = a.Code
	case SetLocales:
		if a.Website != "" && a.Website != next.SelectedWebsite {
			return state
		}
		next.Locales = nonNil(a.Locales)
	case SignOut, ResetState:
		return InitialState()
	default:
		return state
	}

	return next
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return append([]T{}, items...)
}
