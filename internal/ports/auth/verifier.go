package auth

import "context"

// AuthVerifier valida un token de sesión y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
