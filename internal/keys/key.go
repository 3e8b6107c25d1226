package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var keySize = 32 // 32 bytes for AES-256

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

type Key []byte

func NewKey() (*Key, error) {
	bytes := make([]byte, keySize)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	key := Key(bytes)
	return &key, nil
}

func ParseKey(bytes []byte) (*Key, error) {
	switch len(bytes) {
	case 16, 24, 32:
		key := Key(bytes)
		return &key, nil
	default:
		return nil, fmt.Errorf("invalid key size: got %d, need 16, 24 or 32", len(bytes))
	}
}

func (k Key) String() string {
	return base64.URLEncoding.EncodeToString(k)
}

func (k Key) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals data with AES-GCM. The nonce is prepended to the result.
func (k Key) Encrypt(data []byte) ([]byte, error) {
	gcm, err := k.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize(), gcm.NonceSize()+len(data)+gcm.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func (k Key) Decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := k.aead()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, ErrMalformedCiphertext
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrMalformedCiphertext
	}
	return plaintext, nil
}

// EncryptString encrypts value and encodes it for use in cookies and urls.
func (k Key) EncryptString(value string) (string, error) {
	encrypted, err := k.Encrypt([]byte(value))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(encrypted), nil
}

func (k Key) DecryptString(value string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	decrypted, err := k.Decrypt(data)
	if err != nil {
		return "", err
	}
	return string(decrypted), nil
}
