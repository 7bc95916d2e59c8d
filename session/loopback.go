package session

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultCallbackPath is where the loopback popup expects the redirect
	DefaultCallbackPath = "/auth-callback"
	cancelPath          = "/cancel"
)

var loopbackPage = template.Must(template.New("loopback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 40px; text-align: center;">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>`))

// LoopbackOpener opens the authorization URL in the system browser and
// receives the redirect on a local HTTP listener. Visiting /cancel on the
// listener counts as closing the window.
type LoopbackOpener struct {
	// Addr is the host:port named by the redirect URI
	Addr string
	// CallbackPath defaults to DefaultCallbackPath
	CallbackPath string
	// OpenURL defaults to browser.OpenURL
	OpenURL func(url string) error
}

var _ Opener = (*LoopbackOpener)(nil)

// Open starts the callback listener and points the browser at authURL
func (o *LoopbackOpener) Open(ctx context.Context, authURL string) (Popup, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", o.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", o.Addr, err)
	}

	callbackPath := o.CallbackPath
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}

	p := &loopbackPopup{
		addr:     ln.Addr().String(),
		messages: make(chan Message, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, p.handleCallback)
	mux.HandleFunc(cancelPath, p.handleCancel)
	p.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Authorization callback listener stopped")
			p.markClosed()
		}
	}()

	openURL := o.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	log.Info().Str("callback", p.addr).Msg("Opening browser for authorization")
	if err := openURL(authURL); err != nil {
		log.Warn().Err(err).Msg("Failed to open browser")
		log.Info().Str("url", authURL).Msg("Please open this URL in your browser")
	}

	return p, nil
}

type loopbackPopup struct {
	addr     string
	server   *http.Server
	messages chan Message

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func (p *loopbackPopup) Messages() <-chan Message {
	return p.messages
}

func (p *loopbackPopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *loopbackPopup) Close() {
	p.once.Do(func() {
		p.markClosed()

		// Shutdown lets an in-flight callback response finish
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := p.server.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to shutdown authorization callback listener")
			}
		}()
	})
}

func (p *loopbackPopup) markClosed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// post delivers the first message only
func (p *loopbackPopup) post(msg Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.messages <- msg:
		return true
	default:
		return false
	}
}

func (p *loopbackPopup) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	msg := Message{Type: MessageSuccess, Code: query.Get("code"), State: query.Get("state")}
	if errParam := query.Get("error"); errParam != "" {
		msg = Message{Type: MessageError, Error: errParam, ErrorDescription: query.Get("error_description")}
	} else if msg.Code == "" {
		msg = Message{Type: MessageError, Error: "invalid_request", ErrorDescription: "missing authorization code"}
	}

	if !p.post(msg) {
		p.render(w, http.StatusConflict, "Authentication Not Pending", "This authorization request is no longer pending.")
		return
	}
	if msg.Type == MessageError {
		p.render(w, http.StatusBadRequest, "Authentication Failed", "Authentication failed. You can close this window.")
		return
	}
	p.render(w, http.StatusOK, "Authentication Successful", "You can now close this window and return to the terminal.")
}

func (p *loopbackPopup) handleCancel(w http.ResponseWriter, r *http.Request) {
	p.markClosed()
	p.render(w, http.StatusOK, "Authentication Cancelled", "You can close this window.")
}

func (p *loopbackPopup) render(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.WriteHeader(status)

	data := struct{ Title, Message string }{title, message}
	if err := loopbackPage.Execute(w, data); err != nil {
		log.Warn().Err(err).Msg("Failed to write callback page")
	}
}
