package authz

import (
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes and checks passwords. The hash format is opaque
// to the rest of the service; swapping algorithms only means swapping this
// implementation.
type CredentialVerifier interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptVerifier is the default CredentialVerifier.
type BcryptVerifier struct{}

func (BcryptVerifier) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptVerifier) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
