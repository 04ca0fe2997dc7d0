package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankCipherRoundTrip(t *testing.T) {
	c, err := NewBankCipher("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	for _, account := range []string{"123456789012", "0000", ""} {
		sealed, err := c.Encrypt(account)
		require.NoError(t, err)
		assert.NotEqual(t, account, sealed)
		assert.Equal(t, account, c.Decrypt(sealed))
	}
}

func TestBankCipherCorruptedCiphertext(t *testing.T) {
	c, err := NewBankCipher("a passphrase that is not hex")
	require.NoError(t, err)

	sealed, err := c.Encrypt("123456789012")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	corrupted := base64.StdEncoding.EncodeToString(raw)

	assert.Equal(t, "", c.Decrypt(corrupted))
	assert.Equal(t, "", c.Decrypt("not base64 !!"))
	assert.Equal(t, "", c.Decrypt(""))

	other, err := NewBankCipher("another key")
	require.NoError(t, err)
	assert.Equal(t, "", other.Decrypt(sealed))
}

func TestNewBankCipherRequiresKey(t *testing.T) {
	_, err := NewBankCipher("")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestMaskAccountNumber(t *testing.T) {
	assert.Equal(t, "XXXXXXXX9012", MaskAccountNumber("123456789012"))
	assert.Equal(t, "12", MaskAccountNumber("12"))
}
