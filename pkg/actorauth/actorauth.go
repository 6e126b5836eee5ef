// Package actorauth provides local password authentication for PLUSActor
// accounts of type "user"/"openid-user" (§2.2, §3): bcrypt hashing and
// verification only. Role/JWT/session machinery is out of this core's
// scope (§1's exclusion of HTTP transport and OpenID Connect); the
// privilege lattice in pkg/privilege is what decides what an authenticated
// actor may see.
package actorauth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost mirrors bcrypt's own recommended default, used unless a
// caller asks for a different one via SetPasswordWithCost.
const DefaultCost = bcrypt.DefaultCost

// SetPassword hashes password with bcrypt's default cost and returns the
// hash to store on the PLUSActor record.
func SetPassword(password string) (string, error) {
	return SetPasswordWithCost(password, DefaultCost)
}

// SetPasswordWithCost hashes password at the given bcrypt cost.
func SetPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("actorauth: empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("actorauth: hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches the bcrypt hash stored on the
// actor record.
func Verify(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
