// Package secretbox protects the remote platform's per-user passwords at
// rest with AES-256-GCM under a single process-wide key.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMalformedCiphertext is returned when a ciphertext cannot be decoded:
// bad base64, truncated payload, tampering, or a wrong key. Callers must
// treat it as fatal to the operation in progress, never as an empty
// password.
var ErrMalformedCiphertext = errors.New("secretbox: malformed ciphertext")

// Codec encrypts and decrypts short secrets. The key is derived from the
// configured secret via SHA-256, so any non-empty passphrase yields a
// valid AES-256 key. Safe for concurrent use.
type Codec struct {
	aead cipher.AEAD
}

// New builds a Codec from the process-wide secret.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("secretbox: empty key")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh random nonce. The nonce is
// prepended to the ciphertext and the whole envelope base64-encoded, so
// no per-message state is retained and repeated decrypt of the same
// ciphertext always succeeds.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure maps to ErrMalformedCiphertext.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return "", fmt.Errorf("%w: envelope too short", ErrMalformedCiphertext)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return string(plain), nil
}
