// Package sealer encrypts ticket secret keys before they reach a storage
// backend. Keys must stay recoverable because the QR payload is derived from
// them again on reprint, so they are sealed with an AEAD rather than hashed.
package sealer

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const sealedPrefix = "v1:"

var (
	ErrMalformed  = errors.New("sealed value is malformed")
	ErrInvalidKey = errors.New("sealing key must be 32 bytes")
)

type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// Noop stores values as they are. Used when no sealing key is configured.
type Noop struct{}

func (Noop) Seal(plaintext string) (string, error) { return plaintext, nil }
func (Noop) Open(sealed string) (string, error)    { return sealed, nil }

// AEAD seals values with XChaCha20-Poly1305 under a random 24-byte nonce.
type AEAD struct {
	aead cipher.AEAD
}

func New(key []byte) (*AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305.NewX -> %w", err)
	}
	return &AEAD{aead: aead}, nil
}

// FromBase64 builds a Sealer from a base64 encoded key. An empty key yields
// Noop.
func FromBase64(encoded string) (Sealer, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return Noop{}, nil
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64.DecodeString -> %w", err)
	}
	return New(key)
}

func (a *AEAD) Seal(plaintext string) (string, error) {
	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(plaintext)+a.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("rand.Read -> %w", err)
	}
	out := a.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (a *AEAD) Open(sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", ErrMalformed
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformed
	}
	if len(raw) < a.aead.NonceSize() {
		return "", ErrMalformed
	}
	nonce, ciphertext := raw[:a.aead.NonceSize()], raw[a.aead.NonceSize():]
	plain, err := a.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("a.aead.Open -> %w", err)
	}
	return string(plain), nil
}
