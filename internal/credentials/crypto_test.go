package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweron/dbscope/internal/errs"
)

func TestEncryptDecrypt(t *testing.T) {
	plaintext := []byte(`{"password":"hunter2"}`)

	blob, err := Encrypt(plaintext, "master-password")
	require.NoError(t, err)
	// Ciphertext must not leak the plaintext.
	assert.NotContains(t, blob.Data, "hunter2")

	got, err := Decrypt(blob, "master-password")
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEncrypt_FreshSaltAndNonce(t *testing.T) {
	a, err := Encrypt([]byte("same input"), "pw")
	require.NoError(t, err)
	b, err := Encrypt([]byte("same input"), "pw")
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Data, b.Data)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), "right")
	require.NoError(t, err)

	_, err = Decrypt(blob, "wrong")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDecrypt_Tampered(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), "pw")
	require.NoError(t, err)

	blob.Data = "bm90IHJlYWwgY2lwaGVydGV4dA==" // valid base64, wrong bytes
	_, err = Decrypt(blob, "pw")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDecrypt_MalformedBase64(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), "pw")
	require.NoError(t, err)

	blob.Nonce = "not base64!!!"
	_, err = Decrypt(blob, "pw")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestVerifyPassword(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), "pw")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(blob, "pw"))
	assert.False(t, VerifyPassword(blob, "other"))
}
