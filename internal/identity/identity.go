// Package identity manages the device's single Ed25519 keypair: generation,
// persistence, did:key encoding, and canonical-hash signing/verification.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

const (
	privateKeyFile = "did_private_key.bin"
	identityFile   = "did_identity.json"
)

// metadata is the on-disk shape of did_identity.json.
type metadata struct {
	DID          string `json:"did"`
	PublicKeyHex string `json:"public_key_hex"`
	CreatedAt    string `json:"created_at"`
}

// Identity holds a single device keypair and its metadata.
type Identity struct {
	signingKey   ed25519.PrivateKey
	verifyingKey ed25519.PublicKey
	did          string
	createdAt    string
	dir          string
}

// Initialize loads the identity from dir if the private key file exists
// (the metadata file must then exist too, or Initialize fails), or
// generates a fresh keypair and persists it there if the key file is
// absent. createdAt is re-populated
// from the metadata file on every load (see DESIGN.md / SPEC_FULL.md §9,
// Open Question decision 1), not only on first generation.
func Initialize(dir string) (*Identity, error) {
	keyPath := filepath.Join(dir, privateKeyFile)
	metaPath := filepath.Join(dir, identityFile)

	seed, err := os.ReadFile(keyPath)
	if err == nil {
		if len(seed) != ed25519.SeedSize {
			return nil, rerr.New(rerr.InvalidArgument, "identity.Initialize",
				fmt.Sprintf("private key file is %d bytes, want %d", len(seed), ed25519.SeedSize))
		}
		priv := ed25519.NewKeyFromSeed(seed)

		raw, merr := os.ReadFile(metaPath)
		if merr != nil {
			return nil, rerr.Wrap(rerr.Storage, "identity.Initialize: read metadata", merr)
		}
		var meta metadata
		if jerr := json.Unmarshal(raw, &meta); jerr != nil {
			return nil, rerr.Wrap(rerr.ParseExternal, "identity.Initialize: parse metadata", jerr)
		}

		return &Identity{
			signingKey:   priv,
			verifyingKey: priv.Public().(ed25519.PublicKey),
			did:          meta.DID,
			createdAt:    meta.CreatedAt,
			dir:          dir,
		}, nil
	}
	if !os.IsNotExist(err) {
		return nil, rerr.Wrap(rerr.Storage, "identity.Initialize: read key", err)
	}

	return generate(dir)
}

func generate(dir string) (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, rerr.Wrap(rerr.Crypto, "identity.generate", err)
	}

	id := &Identity{
		signingKey:   priv,
		verifyingKey: pub,
		did:          PublicKeyToDID(pub),
		createdAt:    time.Now().UTC().Format(time.RFC3339),
		dir:          dir,
	}
	if err := id.persist(); err != nil {
		return nil, err
	}
	return id, nil
}

func (id *Identity) persist() error {
	if err := os.MkdirAll(id.dir, 0o700); err != nil {
		return rerr.Wrap(rerr.Storage, "identity.persist: mkdir", err)
	}

	seed := id.signingKey.Seed()
	if err := os.WriteFile(filepath.Join(id.dir, privateKeyFile), seed, 0o600); err != nil {
		return rerr.Wrap(rerr.Storage, "identity.persist: write key", err)
	}

	meta := metadata{
		DID:          id.did,
		PublicKeyHex: fmt.Sprintf("%x", []byte(id.verifyingKey)),
		CreatedAt:    id.createdAt,
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("identity.persist: marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(id.dir, identityFile), raw, 0o600); err != nil {
		return rerr.Wrap(rerr.Storage, "identity.persist: write metadata", err)
	}
	return nil
}

// DID returns this identity's did:key string.
func (id *Identity) DID() string { return id.did }

// CreatedAt returns the identity's recorded creation timestamp.
func (id *Identity) CreatedAt() string { return id.createdAt }

// VerifyingKey returns a copy of the public key.
func (id *Identity) VerifyingKey() ed25519.PublicKey {
	out := make(ed25519.PublicKey, len(id.verifyingKey))
	copy(out, id.verifyingKey)
	return out
}

// SigningKey returns a copy of the private key, cloned out so the critical
// section around any mutex guarding the Identity stays short (per spec.md
// §5's guidance for this component).
func (id *Identity) SigningKey() ed25519.PrivateKey {
	out := make(ed25519.PrivateKey, len(id.signingKey))
	copy(out, id.signingKey)
	return out
}

// ExportedKeypair holds hex of the secret seed, public key, DID, and
// creation timestamp, as emitted by Export.
type ExportedKeypair struct {
	SecretKeyHex string `json:"secret_key_hex"`
	PublicKeyHex string `json:"public_key_hex"`
	DID          string `json:"did"`
	CreatedAt    string `json:"created_at"`
}

// Export returns the exportable form of this identity.
func (id *Identity) Export() ExportedKeypair {
	return ExportedKeypair{
		SecretKeyHex: fmt.Sprintf("%x", id.signingKey.Seed()),
		PublicKeyHex: fmt.Sprintf("%x", []byte(id.verifyingKey)),
		DID:          id.did,
		CreatedAt:    id.createdAt,
	}
}

// Import accepts a 32-byte hex secret seed, regenerates the public key,
// persists both files under dir, and returns the new in-memory identity.
func Import(dir string, secretSeedHex string) (*Identity, error) {
	seed, err := hex.DecodeString(secretSeedHex)
	if err != nil {
		return nil, rerr.Wrap(rerr.InvalidArgument, "identity.Import: decode seed", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, rerr.New(rerr.InvalidArgument, "identity.Import",
			fmt.Sprintf("seed is %d bytes, want %d", len(seed), ed25519.SeedSize))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	id := &Identity{
		signingKey:   priv,
		verifyingKey: pub,
		did:          PublicKeyToDID(pub),
		createdAt:    time.Now().UTC().Format(time.RFC3339),
		dir:          dir,
	}
	if err := id.persist(); err != nil {
		return nil, err
	}
	return id, nil
}

// HasIdentity reports whether both identity files exist under dir.
func HasIdentity(dir string) bool {
	_, err1 := os.Stat(filepath.Join(dir, privateKeyFile))
	_, err2 := os.Stat(filepath.Join(dir, identityFile))
	return err1 == nil && err2 == nil
}
