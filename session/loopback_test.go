package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLoopback(t *testing.T) (*loopbackPopup, string) {
	t.Helper()

	var opened string
	opener := &LoopbackOpener{
		Addr:    "127.0.0.1:0",
		OpenURL: func(url string) error { opened = url; return nil },
	}

	popup, err := opener.Open(context.Background(), "https://auth.example.com/oauth/authorize?state=s1")
	require.NoError(t, err)
	t.Cleanup(popup.Close)
	assert.Equal(t, "https://auth.example.com/oauth/authorize?state=s1", opened)

	p, ok := popup.(*loopbackPopup)
	require.True(t, ok)
	return p, "http://" + p.addr
}

func TestLoopbackOpener_DeliversCallback(t *testing.T) {
	p, base := openLoopback(t)

	resp, err := http.Get(base + "/auth-callback?code=abc&state=s1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	msg, err := waitForMessage(context.Background(), p, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, Message{Type: MessageSuccess, Code: "abc", State: "s1"}, msg)
	assert.True(t, p.Closed())
}

func TestLoopbackOpener_ProviderError(t *testing.T) {
	p, base := openLoopback(t)

	resp, err := http.Get(base + "/auth-callback?error=access_denied&error_description=denied")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	msg := <-p.Messages()
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, "access_denied", msg.Error)
	assert.Equal(t, "denied", msg.ErrorDescription)
}

func TestLoopbackOpener_OnlyFirstCallbackCounts(t *testing.T) {
	_, base := openLoopback(t)

	first, err := http.Get(base + "/auth-callback?code=abc&state=s1")
	require.NoError(t, err)
	first.Body.Close()

	second, err := http.Get(base + "/auth-callback?code=other&state=s1")
	require.NoError(t, err)
	second.Body.Close()

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

func TestLoopbackOpener_CancelClosesWindow(t *testing.T) {
	p, base := openLoopback(t)

	resp, err := http.Get(base + "/cancel")
	require.NoError(t, err)
	resp.Body.Close()

	_, err = waitForMessage(context.Background(), p, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestLoopbackOpener_ListenFailure(t *testing.T) {
	opener := &LoopbackOpener{Addr: "not-an-address"}

	_, err := opener.Open(context.Background(), "https://auth.example.com")
	assert.Error(t, err)
}
