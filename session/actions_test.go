package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogem/agility-auth/models"
)

func populatedState() State {
	return State{
		IsAuthenticated:  true,
		IsLoading:        true,
		IsLoadingLocales: true,
		Error:            "something",
		User:             &models.ServerUser{UserName: "jdoe"},
		WebsiteAccess:    []models.WebsiteAccess{{WebsiteGUID: "w1", WebsiteName: "One"}},
		SelectedWebsite:  "w1",
		SelectedLocale:   "en-us",
		Locales:          []models.LocaleInfo{{LocaleCode: "en-us", LocaleName: "English"}},
	}
}

func TestReduce_SignOutAndResetReturnInitialState(t *testing.T) {
	for _, action := range []Action{SignOut{}, ResetState{}} {
		assert.Equal(t, InitialState(), Reduce(populatedState(), action))
		assert.Equal(t, InitialState(), Reduce(InitialState(), action))
	}
}

func TestReduce_SelectWebsiteResetsLocales(t *testing.T) {
	next := Reduce(populatedState(), SetSelectedWebsite{GUID: "w2"})

	assert.Equal(t, "w2", next.SelectedWebsite)
	assert.Empty(t, next.SelectedLocale)
	assert.Equal(t, []models.LocaleInfo{}, next.Locales)
	assert.False(t, next.IsLoadingLocales)
}

func TestReduce_UserDataNeedsAuthentication(t *testing.T) {
	state := InitialState()
	user := &models.ServerUser{UserName: "jdoe"}

	assert.Equal(t, state, Reduce(state, SetUser{User: user}))
	assert.Equal(t, state, Reduce(state, SetWebsiteAccess{Websites: []models.WebsiteAccess{{WebsiteGUID: "w1"}}}))

	cleared := Reduce(populatedState(), SetAuthenticated{Authenticated: false})
	cleared = Reduce(cleared, SetUser{User: nil})
	cleared = Reduce(cleared, SetWebsiteAccess{Websites: nil})
	assert.Nil(t, cleared.User)
	assert.Equal(t, []models.WebsiteAccess{}, cleared.WebsiteAccess)
}

func TestReduce_SelectLocaleNeedsWebsite(t *testing.T) {
	state := InitialState()
	assert.Equal(t, state, Reduce(state, SetSelectedLocale{Code: "en-us"}))

	state = Reduce(state, SetSelectedWebsite{GUID: "w1"})
	state = Reduce(state, SetSelectedLocale{Code: "en-us"})
	assert.Equal(t, "en-us", state.SelectedLocale)
}

func TestReduce_StaleLocalesAreDropped(t *testing.T) {
	state := Reduce(InitialState(), SetSelectedWebsite{GUID: "w2"})
	locales := []models.LocaleInfo{{LocaleCode: "en-us"}}

	stale := Reduce(state, SetLocales{Website: "w1", Locales: locales})
	assert.Empty(t, stale.Locales)

	fresh := Reduce(state, SetLocales{Website: "w2", Locales: locales})
	assert.Equal(t, locales, fresh.Locales)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	state := populatedState()
	next := Reduce(state, SetWebsiteAccess{Websites: []models.WebsiteAccess{{WebsiteGUID: "w9"}}})
	next.Locales[0].LocaleName = "changed"

	assert.Equal(t, populatedState(), state)
	assert.Equal(t, "w9", next.WebsiteAccess[0].WebsiteGUID)
}

func TestReduce_SimpleSetters(t *testing.T) {
	state := InitialState()

	state = Reduce(state, SetLoading{Loading: true})
	assert.True(t, state.IsLoading)

	state = Reduce(state, SetLoadingLocales{Loading: true})
	assert.True(t, state.IsLoadingLocales)

	state = Reduce(state, SetError{Message: MsgAuthFailed})
	assert.Equal(t, MsgAuthFailed, state.Error)

	state = Reduce(state, ClearError{})
	assert.Empty(t, state.Error)

	state = Reduce(state, SetAuthenticated{Authenticated: true})
	assert.True(t, state.IsAuthenticated)

	user := &models.ServerUser{UserName: "jdoe"}
	state = Reduce(state, SetUser{User: user})
	assert.Same(t, user, state.User)

	state = Reduce(state, SetWebsiteAccess{Websites: nil})
	assert.Equal(t, []models.WebsiteAccess{}, state.WebsiteAccess)
}
