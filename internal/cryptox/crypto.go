// Package cryptox seals snapshot bodies at rest.
//
// Keys are derived from an operator passphrase with argon2id; bodies are
// encrypted with AES-256-GCM. A sealed envelope is self-describing:
//
//	magic(6) | salt(16) | nonce(12) | ciphertext
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

var magic = []byte("FVENC1")

var (
	// ErrNotSealed is returned by Open for input without the envelope header.
	ErrNotSealed = errors.New("cryptox: data is not a sealed envelope")
	// ErrDecrypt covers a wrong passphrase and tampered ciphertext alike.
	ErrDecrypt = errors.New("cryptox: unable to decrypt")
)

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader

// DeriveKey stretches passphrase into a 32-byte AES key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// IsSealed reports whether data starts with the envelope header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Seal encrypts plaintext under a key derived from passphrase with a fresh
// salt and nonce.
func Seal(passphrase, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, err
	}

	aead, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	header := append(append([]byte{}, magic...), salt...)

	out := make([]byte, 0, len(header)+nonceSize+len(plaintext)+aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	// the header is authenticated as additional data
	return aead.Seal(out, nonce, plaintext, header), nil
}

// Open reverses Seal.
func Open(passphrase, sealed []byte) ([]byte, error) {
	if !IsSealed(sealed) || len(sealed) < len(magic)+saltSize+nonceSize {
		return nil, ErrNotSealed
	}
	header := sealed[:len(magic)+saltSize]
	salt := header[len(magic):]
	nonce := sealed[len(header) : len(header)+nonceSize]
	ciphertext := sealed[len(header)+nonceSize:]

	aead, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// Wipe zeroes b. Use it on passwords and keys once they are no longer
// needed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// newGCM wipes key once the cipher has been built.
func newGCM(key []byte) (cipher.AEAD, error) {
	defer Wipe(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
