// Package crypt handles secret payload encryption. Payloads are
// age-encrypted with a scrypt passphrase; stored file names can
// optionally be hashed so a directory listing does not reveal which
// secrets are tracked.
package crypt

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	stderrors "errors"
	"io"
	"path/filepath"

	"filippo.io/age"

	"github.com/arthur-debert/dotkeep/pkg/errors"
)

// Suffix is appended to every encrypted payload file name.
const Suffix = ".age"

// Encrypt seals plaintext with the given passphrase.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New(errors.ErrInvalidInput, "passphrase is empty")
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create recipient")
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to start encryption")
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encrypt payload")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to finalize encryption")
	}
	return buf.Bytes(), nil
}

// Decrypt opens a sealed payload. A wrong passphrase returns an
// AUTH_FAILED error and no plaintext.
func Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New(errors.ErrInvalidInput, "passphrase is empty")
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create identity")
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, wrapDecryptErr(err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		// Payload authentication happens during the read, so a
		// tampered body surfaces here rather than in age.Decrypt
		return nil, wrapDecryptErr(err)
	}
	return plaintext, nil
}

func wrapDecryptErr(err error) error {
	var noMatch *age.NoIdentityMatchError
	if stderrors.As(err, &noMatch) {
		return errors.Wrap(err, errors.ErrAuthFailed, "wrong passphrase")
	}
	return errors.Wrap(err, errors.ErrAuthFailed, "failed to decrypt payload")
}

// HashName returns the obfuscated stored name for a secret file name:
// the URL-safe unpadded base64 of its SHA-256 digest. The mapping is
// deterministic so every machine computes the same stored name.
func HashName(name string) string {
	sum := sha256.Sum256([]byte(name))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// StoredName returns the on-disk file name for a secret, applying
// optional name hashing and the payload suffix.
func StoredName(name string, hashFilename bool) string {
	base := filepath.Base(name)
	if hashFilename {
		base = HashName(base)
	}
	return base + Suffix
}
