package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/argon2"

	"github.com/kweron/dbscope/internal/errs"
)

// Argon2id parameters for deriving the file encryption key from the user's
// password. Tuned for interactive use on a desktop machine.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	keyLen       = 32 // AES-256
	saltLen      = 16
)

// EncryptedBlob is a password-encrypted payload that is safe to write to
// disk. All fields are base64-encoded.
type EncryptedBlob struct {
	Data  string `json:"data" yaml:"data"`
	Nonce string `json:"nonce" yaml:"nonce"`
	Salt  string `json:"salt" yaml:"salt"`
}

// Encrypt seals plaintext with AES-256-GCM under a key derived from the
// password via Argon2id with a fresh random salt.
func Encrypt(plaintext []byte, password string) (*EncryptedBlob, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to generate salt", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to generate nonce", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	enc := base64.StdEncoding
	return &EncryptedBlob{
		Data:  enc.EncodeToString(ciphertext),
		Nonce: enc.EncodeToString(nonce),
		Salt:  enc.EncodeToString(salt),
	}, nil
}

// Decrypt opens a blob with the given password. A wrong password surfaces
// as an invalid-input error (GCM authentication failure).
func Decrypt(blob *EncryptedBlob, password string) ([]byte, error) {
	enc := base64.StdEncoding

	ciphertext, err := enc.DecodeString(blob.Data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid encrypted data", err)
	}
	nonce, err := enc.DecodeString(blob.Nonce)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid nonce", err)
	}
	salt, err := enc.DecodeString(blob.Salt)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid salt", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errs.New(errs.ErrKindInvalidInput, "invalid nonce length")
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "decryption failed (wrong password?)", err)
	}
	return plaintext, nil
}

// VerifyPassword reports whether the password decrypts the blob.
func VerifyPassword(blob *EncryptedBlob, password string) bool {
	_, err := Decrypt(blob, password)
	return err == nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to initialise cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to initialise GCM", err)
	}
	return gcm, nil
}
