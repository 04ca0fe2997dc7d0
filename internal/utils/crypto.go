package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("bank encryption key is not configured")

// BankCipher seals bank account numbers with AES-256-GCM. Ciphertexts are
// base64(nonce || sealed).
type BankCipher struct {
	aead cipher.AEAD
}

// NewBankCipher accepts a 64 character hex key or any other non-empty secret,
// which is stretched to 32 bytes with SHA-256.
func NewBankCipher(secret string) (*BankCipher, error) {
	if secret == "" {
		return nil, ErrInvalidKey
	}
	key, err := hex.DecodeString(secret)
	if err != nil || len(key) != 32 {
		sum := sha256.Sum256([]byte(secret))
		key = sum[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &BankCipher{aead: aead}, nil
}

func (b *BankCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns "" for anything that does not authenticate.
func (b *BankCipher) Decrypt(ciphertext string) string {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return ""
	}
	ns := b.aead.NonceSize()
	if len(raw) < ns+b.aead.Overhead() {
		return ""
	}
	plain, err := b.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return ""
	}
	return string(plain)
}

// MaskAccountNumber keeps the last four digits.
func MaskAccountNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	masked := make([]byte, len(number)-4)
	for i := range masked {
		masked[i] = 'X'
	}
	return string(masked) + number[len(number)-4:]
}
