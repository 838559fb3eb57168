// Package securestore encrypts provider credentials for storage at rest.
package securestore

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/finance-dash/backend/internal/apperrors"
)

// Store encrypts and decrypts short secrets with a fernet key. A nil *Store
// means no secret is configured: both operations fail with
// ErrCredentialStoreDisabled but the application runs fine on environment
// keys alone.
type Store struct {
	key *fernet.Key
}

// New builds a Store from a base64 fernet secret. An empty secret returns
// (nil, nil) to disable encrypted storage.
func New(secret string) (*Store, error) {
	if secret == "" {
		return nil, nil
	}

	key, err := fernet.DecodeKey(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid fernet secret: %w", err)
	}

	return &Store{key: key}, nil
}

// Enabled reports whether encrypted storage is available.
func (s *Store) Enabled() bool {
	return s != nil
}

// Encrypt seals a plaintext secret into a fernet token.
func (s *Store) Encrypt(plaintext string) (string, error) {
	if s == nil {
		return "", apperrors.ErrCredentialStoreDisabled
	}

	token, err := fernet.EncryptAndSign([]byte(plaintext), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt credential: %w", err)
	}

	return string(token), nil
}

// Decrypt opens a fernet token. Tokens carry no TTL; rotation happens by
// re-saving the credential.
func (s *Store) Decrypt(token string) (string, error) {
	if s == nil {
		return "", apperrors.ErrCredentialStoreDisabled
	}

	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{s.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt credential")
	}

	return string(plaintext), nil
}
