// Package sync implements the encrypted delta-sync engine: HKDF key
// derivation from the device DID secret, AES-256-GCM envelopes, delta
// extraction, and Last-Write-Wins merge on import.
package sync

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// hkdfSalt and hkdfInfo are fixed so the same device seed always derives
// the same sync key, and different devices derive different keys.
var (
	hkdfSalt = []byte("rebe-sync-v1")
	hkdfInfo = []byte("rebe-e2e-sync-aes256gcm")
)

const nonceSize = 12
const keySize = 32

// DeriveSyncKey expands a 32-byte DID secret seed into a 32-byte AES key.
func DeriveSyncKey(didSecretSeed []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, didSecretSeed, hkdfSalt, hkdfInfo)
	key := make([]byte, keySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, rerr.Wrap(rerr.Crypto, "sync.DeriveSyncKey", err)
	}
	return key, nil
}

// Encrypt seals plaintext under key with a random 96-bit nonce, returning
// nonce || ciphertext || tag concatenated.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, rerr.Wrap(rerr.Crypto, "sync.Encrypt: new cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, rerr.Wrap(rerr.Crypto, "sync.Encrypt: new gcm", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, rerr.Wrap(rerr.Crypto, "sync.Encrypt: nonce", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// Decrypt opens a blob produced by Encrypt. Fails with a Crypto error both
// on too-short input and on authentication failure (wrong key or tampered
// data) — the caller cannot and should not distinguish the two.
func Decrypt(key, blob []byte) ([]byte, error) {
	if len(blob) < nonceSize+16 {
		return nil, rerr.New(rerr.Crypto, "sync.Decrypt", "blob too short to contain nonce and tag")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, rerr.Wrap(rerr.Crypto, "sync.Decrypt: new cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, rerr.Wrap(rerr.Crypto, "sync.Decrypt: new gcm", err)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, rerr.New(rerr.Crypto, "sync.Decrypt", "wrong key or tampered data")
	}
	return plaintext, nil
}

// EncryptJSON derives a key from didSecretSeed, encrypts v's JSON
// marshaling, and returns a standard-base64 envelope string.
func EncryptJSON(didSecretSeed []byte, v interface{}) (string, error) {
	key, err := DeriveSyncKey(didSecretSeed)
	if err != nil {
		return "", err
	}
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("sync: marshal: %w", err)
	}
	blob, err := Encrypt(key, plaintext)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptJSON is the inverse of EncryptJSON: decodes base64, decrypts, and
// unmarshals into out.
func DecryptJSON(didSecretSeed []byte, envelope string, out interface{}) error {
	key, err := DeriveSyncKey(didSecretSeed)
	if err != nil {
		return err
	}
	blob, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return rerr.Wrap(rerr.Crypto, "sync.DecryptJSON: base64", err)
	}
	plaintext, err := Decrypt(key, blob)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return rerr.Wrap(rerr.ParseExternal, "sync.DecryptJSON: unmarshal", err)
	}
	return nil
}
