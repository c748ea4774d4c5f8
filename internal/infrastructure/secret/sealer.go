// Package secret seals connection credentials at rest with NaCl secretbox.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "v1:"
	nonceSize    = 24
	keySize      = 32
	hkdfInfo     = "shopify-connector/credentials/v1"
)

var (
	ErrEmptyKey        = errors.New("secret: key is required")
	ErrMalformedSealed = errors.New("secret: malformed sealed value")
	ErrDecrypt         = errors.New("secret: decryption failed")
)

// Sealer encrypts short strings with a key derived from a passphrase.
// Sealed values look like "v1:<base64(nonce|box)>".
type Sealer struct {
	key [keySize]byte
}

// NewSealer derives the box key from passphrase with HKDF-SHA256
func NewSealer(passphrase string) (*Sealer, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, ErrEmptyKey
	}
	s := &Sealer{}
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("secret: derive key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext under a fresh random nonce
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("secret: nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a sealed value. Values without the version prefix were
// stored before sealing was enabled and are returned unchanged.
func (s *Sealer) Open(sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return sealed, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrMalformedSealed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
