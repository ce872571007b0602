package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when no explicit cost is
// configured. Raising it slows both hashing and verification.
const DefaultBcryptCost = 12

// dummyPasswordHash is compared against when the identifier does not match
// any stored identity, so the unknown-identifier path costs the same as a
// wrong-password verify. It is not a credential and matches no password.
const dummyPasswordHash = "$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword will generate a password hash using the default cost
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, passwordHashCost())
}

// HashPasswordWithCost will generate a password hash with an explicit cost.
// Two calls with the same plaintext yield distinct digests; both verify.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordHashCost()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. Any failure, including a malformed digest, reads as a
// mismatch rather than a distinct error.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}

// BcryptHasher implements PasswordAuthenticator with a configurable cost
// taken from startup configuration.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a hasher from the config's cost factor.
func NewBcryptHasher(cfg Config) BcryptHasher {
	cost := passwordHashCost()
	if cfg != nil && cfg.GetPasswordHashCost() > 0 {
		cost = cfg.GetPasswordHashCost()
	}
	return BcryptHasher{cost: cost}
}

func (b BcryptHasher) HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, b.cost)
}

func (b BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

var _ PasswordAuthenticator = BcryptHasher{}
