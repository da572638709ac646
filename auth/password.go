// Package auth contains authentication logic: password hashing, bearer token
// issuance and verification, the login and registration flows, and the
// middleware that guards catalog routes.
package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit; longer passwords are rejected at registration.
const MaxPasswordBytes = 72

// bcryptCost is a variable so tests can use bcrypt.MinCost.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is
// simply a mismatch.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same time as a real comparison so an unknown
// username cannot be told apart from a wrong password by latency.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("cinelens-timing-equalizer"), bcryptCost)
		if err == nil {
			dummyHash = string(h)
		}
	})
	_ = VerifyPassword(password, dummyHash)
}
