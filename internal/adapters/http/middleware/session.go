package middleware

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const tokenContextKey contextKey = "applicant_token"

// SessionCookieName is the cookie carrying the applicant's draft token.
const SessionCookieName = "jobapply_session"

// Applicant returns middleware that copies the session cookie token into the request context.
// It does NOT check that the token names a live draft; handlers start a new one when it does not.
func Applicant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			r = r.WithContext(ContextWithToken(r.Context(), cookie.Value))
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromContext extracts the applicant token from the request context.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}

// ContextWithToken returns a context carrying the given applicant token.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// SetSessionCookie sets the session cookie on the response.
// PRE: token is non-empty; maxAgeSeconds > 0
func SetSessionCookie(w http.ResponseWriter, token string, maxAgeSeconds int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
