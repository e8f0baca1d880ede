package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes with bcrypt at the default work factor (10). The
// salt is baked into the hash, so two hashes of the same plaintext differ.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword returns nil when password matches hash. A malformed hash
// yields an error like any mismatch, never a panic.
func CheckPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
