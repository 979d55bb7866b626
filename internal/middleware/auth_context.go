package middleware

import (
	"context"
	"net/http"
	"strings"

	"medication-reminders/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// AuthContext resuelve la identidad del request y la deja en el context.
// La identidad SIEMPRE viaja explícita por context hacia los services;
// ningún módulo del core lee estado global de sesión.
//
//   - verifier != nil + Bearer token => Verify() y setea claims.
//   - verifier == nil (modo dev)     => header X-Debug-User-ID setea claims.
//   - Sin claims el request sigue: cada handler decide si eso es 401 o
//     un no-op con resultado vacío (política de NotAuthenticated).
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					claims := auth.Claims{UserID: uid}
					next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// Token inválido no corta acá; el handler decide.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func withClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
