// Package crypto seals secret provider settings at rest with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SealedPrefix marks a settings value stored encrypted
const SealedPrefix = "enc:"

var ErrNoKey = errors.New("encryption key is not configured")

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptString returns base64(nonce|ciphertext)
func EncryptString(key []byte, plaintext string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, []byte(plaintext), nil)), nil
}

func DecryptString(key []byte, encoded string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Seal encrypts a settings value and adds SealedPrefix
func Seal(key []byte, value string) (string, error) {
	enc, err := EncryptString(key, value)
	if err != nil {
		return "", err
	}
	return SealedPrefix + enc, nil
}

// OpenSettings decrypts every sealed value in place. Plain values pass through.
func OpenSettings(key []byte, values map[string]string) error {
	for k, v := range values {
		if !strings.HasPrefix(v, SealedPrefix) {
			continue
		}
		plain, err := DecryptString(key, strings.TrimPrefix(v, SealedPrefix))
		if err != nil {
			return fmt.Errorf("decrypt setting %s: %w", k, err)
		}
		values[k] = plain
	}
	return nil
}
