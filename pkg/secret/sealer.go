// Package secret seals short credentials before they are written to local
// storage.
package secret

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sealed:v1:"
	saltSize     = 16
	nonceSize    = 24
	keySize      = 32
)

var ErrUnseal = errors.New("secret: cannot open sealed value")

type Sealer struct {
	passphrase []byte
}

// NewSealer returns nil for an empty passphrase; a nil Sealer passes values
// through untouched.
func NewSealer(passphrase string) *Sealer {
	if passphrase == "" {
		return nil
	}
	return &Sealer{passphrase: []byte(passphrase)}
}

func (s *Sealer) deriveKey(salt []byte) *[keySize]byte {
	var key [keySize]byte
	copy(key[:], argon2.IDKey(s.passphrase, salt, 1, 16*1024, 2, keySize))
	return &key
}

func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

func (s *Sealer) Seal(plain string) (string, error) {
	if s == nil || plain == "" || IsSealed(plain) {
		return plain, nil
	}

	buf := make([]byte, saltSize+nonceSize)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	salt := buf[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], buf[saltSize:])

	out := secretbox.Seal(buf, []byte(plain), &nonce, s.deriveKey(salt))
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if s == nil {
		return "", ErrUnseal
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < saltSize+nonceSize+secretbox.Overhead {
		return "", ErrUnseal
	}
	salt := raw[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], raw[saltSize:saltSize+nonceSize])

	plain, ok := secretbox.Open(nil, raw[saltSize+nonceSize:], &nonce, s.deriveKey(salt))
	if !ok {
		return "", ErrUnseal
	}
	return string(plain), nil
}
