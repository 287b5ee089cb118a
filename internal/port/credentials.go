package port

import "github.com/rl1809/sweet-shop/internal/core/domain"

type TokenService interface {
	Issue(user domain.User) (string, error)

	// Verify returns domain.ErrUnauthorized for malformed, forged or expired tokens
	Verify(token string) (domain.Principal, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)

	// Compare returns domain.ErrInvalidCredentials on mismatch
	Compare(hash, password string) error
}
