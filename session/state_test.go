package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_DerivedViews(t *testing.T) {
	state := populatedState()
	assert.False(t, state.IsReady())
	assert.False(t, state.IsAuthReady())

	state.IsLoading = false
	assert.True(t, state.IsAuthReady())
	assert.False(t, state.IsReady())

	state.IsLoadingLocales = false
	assert.True(t, state.IsReady())

	assert.True(t, state.HasSelection())
	selection := state.CurrentSelection()
	require.NotNil(t, selection)
	assert.Equal(t, "One", selection.WebsiteName)
	assert.Equal(t, "English", selection.LocaleName)
}

func TestState_CurrentSelectionUnknownLocale(t *testing.T) {
	state := populatedState()
	state.SelectedLocale = "de-de"

	assert.True(t, state.HasSelection())
	assert.Nil(t, state.CurrentSelection())
	assert.Nil(t, InitialState().CurrentSelection())
}
