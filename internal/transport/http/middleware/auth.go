package middleware

import (
	"context"
	"net/http"
	"strings"

	"perfhub/internal/domain/auth"
	"perfhub/internal/requestctx"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// Auth extracts the bearer principal when a valid token is present. Missing
// or invalid tokens pass through anonymously; role checks happen downstream.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPrincipal, auth.Principal{
				ID:   claims.UserID,
				Role: claims.Role,
			})
			ctx = requestctx.WithActorID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	principal, ok := ctx.Value(ctxKeyPrincipal).(auth.Principal)
	return principal, ok
}
