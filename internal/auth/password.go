package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password. Cost normally comes from
// AUTH_BCRYPT_COST; anything below bcrypt's minimum (including the zero
// value) falls back to the default cost so a missing setting never weakens
// hashing.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
