package session

import (
	"context"
	"time"
)

// MessageType tells the outcome posted back by the authorization window
type MessageType string

const (
	MessageSuccess MessageType = "AGILITY_AUTH_SUCCESS"
	MessageError   MessageType = "AGILITY_AUTH_ERROR"
)

// Message is what the authorization window posts back
type Message struct {
	Type             MessageType `json:"type"`
	Code             string      `json:"code,omitempty"`
	State            string      `json:"state,omitempty"`
	Error            string      `json:"error,omitempty"`
	ErrorDescription string      `json:"error_description,omitempty"`
}

// Popup is an open authorization window
type Popup interface {
	// Messages delivers the window's result. A closed channel counts as a
	// closed window.
	Messages() <-chan Message
	// Closed reports whether the user closed the window
	Closed() bool
	// Close tears the window down; it is safe to call more than once
	Close()
}

// Opener opens an authorization window at authURL
type Opener interface {
	Open(ctx context.Context, authURL string) (Popup, error)
}

// waitForMessage races the popup's message against a closed-window poll.
// The poll ticker is stopped and the popup closed on every return path.
func waitForMessage(ctx context.Context, popup Popup, interval time.Duration) (Message, error) {
	defer popup.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-popup.Messages():
			if !ok {
				return Message{}, ErrCancelled
			}
			return msg, nil
		case <-ticker.C:
			if popup.Closed() {
				return Message{}, ErrCancelled
			}
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}
