// Package password wraps bcrypt hashing for staff credentials.
package password

import "golang.org/x/crypto/bcrypt"

// Hash hashes a plaintext password with bcrypt at the default cost.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare checks a plaintext password against a stored hash.
func Compare(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
