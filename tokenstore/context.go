package tokenstore

import (
	"context"
	"net/http"
)

type contextKey string

const (
	responseKey contextKey = "token_response"
	requestKey  contextKey = "token_request"
)

// WithHTTP binds an in-flight request and its response to ctx so a
// CookieStore can act on them through the Storage interface
func WithHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	ctx = context.WithValue(ctx, responseKey, w)
	return context.WithValue(ctx, requestKey, r)
}

// BindHTTP is middleware that calls WithHTTP for every request
func BindHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithHTTP(r.Context(), w, r)))
	})
}

func responseFrom(ctx context.Context) (http.ResponseWriter, bool) {
	w, ok := ctx.Value(responseKey).(http.ResponseWriter)
	return w, ok && w != nil
}

func requestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey).(*http.Request)
	return r, ok && r != nil
}
