package middleware

import (
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// sessionCookie is the cookie the auth handler group issues; the gateway
// only ever verifies it.
const sessionCookie = "session-token"

// AppClaims is the claims shape carried by session tokens.
type AppClaims struct {
	jwt.RegisteredClaims
}

// NewIdentity extracts the caller's subject from the session-token cookie
// when one is present and valid, and records it in the request metadata.
// It never rejects: token issuance and authentication policy belong to the
// auth handler group, and most gateway endpoints serve anonymous callers.
// A missing or invalid token just leaves the request anonymous.
func NewIdentity(logger *slog.Logger, jwtSecret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if jwtSecret == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqMeta, ok := ReqMetadataFrom(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.ParseWithClaims(cookie.Value, &AppClaims{}, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				logger.Debug("Ignoring invalid session token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			if claims, ok := token.Claims.(*AppClaims); ok && claims.Subject != "" {
				reqMeta.Subject = claims.Subject
			}
			next.ServeHTTP(w, r)
		})
	}
}
