package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a login attempt's plaintext password against the
// stored hash. The auth service depends on this seam rather than on bcrypt
// directly so tests can substitute a cheap verifier.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword.
	Compare(hashedPassword, password string) error
}

// bcryptVerifier is the production verifier. The work factor is fixed into
// the hash at creation time, so verification needs no configuration.
type bcryptVerifier struct{}

// NewBcryptVerifier returns the bcrypt-backed PasswordVerifier.
func NewBcryptVerifier() PasswordVerifier {
	return bcryptVerifier{}
}

func (bcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
