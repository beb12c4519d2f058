package middleware

import (
	"net/http"
	"time"

	"storefront-be/internal/utils"

	"github.com/google/uuid"
)

const sessionCookieMaxAge = 30 * 24 * time.Hour

// Session gives every client a stable anonymous session key in the sid
// cookie. Guest carts are keyed by it. A freshly minted key is flagged so
// reads can skip building state for it.
func Session(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := ""
			if c, err := r.Cookie(utils.SessionCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					key = c.Value
				}
			}
			if key == "" {
				key = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     utils.SessionCookieName,
					Value:    key,
					Path:     "/",
					MaxAge:   int(sessionCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				ctx = utils.WithNewSession(ctx)
			}

			next.ServeHTTP(w, r.WithContext(utils.SetSessionKey(ctx, key)))
		})
	}
}
