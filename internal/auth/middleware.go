package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// CookieName is the cookie carrying the session token.
const CookieName = "session"

type contextKey string

const userIDKey contextKey = "userID"

// CurrentUserFunc reports the ID of the user the auth container considers
// logged in, or ok=false when nobody is.
type CurrentUserFunc func() (userID string, ok bool)

// RequireSession lets a request through only when its session cookie holds a
// valid token for the currently logged-in user. The user ID is stored in the
// request context for UserIDFromContext.
func RequireSession(tokens *TokenService, current CurrentUserFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				unauthorized(w)
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				logger.Debug("rejected session token", slog.String("error", err.Error()))
				unauthorized(w)
				return
			}

			userID, ok := current()
			if !ok || userID != claims.UserID {
				logger.Debug("session token is for a user who is not logged in",
					slog.String("tokenUser", claims.UserID),
				)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the user ID stored by RequireSession.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SetSessionCookie writes token as an HttpOnly cookie expiring with it.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the client to drop its session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"please log in"}` + "\n"))
}
