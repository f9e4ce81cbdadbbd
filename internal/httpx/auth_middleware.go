package httpx

import (
	"net/http"
	"strings"

	"bookwidget/internal/platform/crypto"

	"github.com/rs/zerolog"
)

// SessionAuthMiddleware requires a session token, taken from the
// Authorization header or, for websocket upgrades, the token query
// parameter.
func SessionAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token", nil)
				return
			}

			claims, err := crypto.ParseSessionToken(secret, token)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("rejected session token")
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session token", nil)
				return
			}

			ctx := ContextWithSession(r.Context(), claims.Sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}
