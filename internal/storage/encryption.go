package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Encryption seals provider API keys with AES-GCM before they hit the
// database. The AEAD is built once at startup; per-call work is only the
// nonce draw and the seal/open.
type Encryption struct {
	aead cipher.AEAD
}

func validKeySize(n int) bool {
	return n == 16 || n == 24 || n == 32
}

// NewEncryption builds the AEAD from a raw key. The key must be 16, 24
// or 32 bytes for AES-128, AES-192 or AES-256.
func NewEncryption(key []byte) (*Encryption, error) {
	if !validKeySize(len(key)) {
		return nil, fmt.Errorf("invalid key size: must be 16, 24, or 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Encryption{aead: aead}, nil
}

// NewEncryptionFromBase64 decodes the ENCRYPTION_KEY environment value
// and builds the AEAD from it.
func NewEncryptionFromBase64(encodedKey string) (*Encryption, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("encryption key cannot be empty")
	}

	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 key: %w", err)
	}

	return NewEncryption(key)
}

// GenerateKey draws a random key of the given size and returns it base64
// encoded, ready to paste into an environment file.
func GenerateKey(keySize int) (string, error) {
	if !validKeySize(keySize) {
		return "", fmt.Errorf("invalid key size: must be 16, 24, or 32 bytes")
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
func (e *Encryption) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := e.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens base64(nonce || ciphertext) produced by Encrypt. A
// wrong key or tampered ciphertext fails authentication.
func (e *Encryption) Decrypt(ciphertextBase64 string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	nonceSize := e.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

// EncryptString encrypts an API key for storage. Empty keys stay empty
// so providers without a stored key round-trip cleanly.
func (e *Encryption) EncryptString(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return e.Encrypt([]byte(plaintext))
}

// DecryptString decrypts a stored API key. Empty ciphertext stays empty.
func (e *Encryption) DecryptString(ciphertextBase64 string) (string, error) {
	if ciphertextBase64 == "" {
		return "", nil
	}

	plaintext, err := e.Decrypt(ciphertextBase64)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
