package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func seededKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	var seed [ed25519.SeedSize]byte
	for i := range seed {
		seed[i] = 0x2a
	}
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

func TestDeterministicDID(t *testing.T) {
	pub, _ := seededKey(t)

	did1 := PublicKeyToDID(pub)
	did2 := PublicKeyToDID(pub)
	require.Equal(t, did1, did2)
	require.Contains(t, did1, "did:key:z6Mk")

	decoded, err := DIDToPublicKey(did1)
	require.NoError(t, err)
	require.Equal(t, []byte(pub), []byte(decoded))
}

func TestDIDToPublicKeyRejectsBadPrefix(t *testing.T) {
	_, err := DIDToPublicKey("did:web:example.com")
	require.Error(t, err)
}

func TestShortDID(t *testing.T) {
	pub, _ := seededKey(t)
	did := PublicKeyToDID(pub)
	short := ShortDID(did)
	require.Contains(t, short, "...")
	require.True(t, len(short) < len(did))
}

func TestSignVerifyTamper(t *testing.T) {
	_, priv := seededKey(t)
	id := &Identity{signingKey: priv, verifyingKey: priv.Public().(ed25519.PublicKey), did: PublicKeyToDID(priv.Public().(ed25519.PublicKey))}

	content := "예산 3000만원으로 확정"
	knowledgeType := "budget_decision"
	createdAt := "2026-02-23T10:00:00Z"

	sig := id.Sign(content, knowledgeType, createdAt)

	ok, err := Verify(sig, content, knowledgeType, createdAt)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Verify(sig, "예산 5000만원으로 변경", knowledgeType, createdAt)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Verify(sig, content, "decision_pattern", createdAt)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyWithKeyRejectsDifferentIdentity(t *testing.T) {
	_, priv1 := seededKey(t)
	id1 := &Identity{signingKey: priv1, verifyingKey: priv1.Public().(ed25519.PublicKey), did: PublicKeyToDID(priv1.Public().(ed25519.PublicKey))}

	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sig := id1.Sign("content", "context", "2026-01-01T00:00:00Z")
	ok, verr := VerifyWithKey(otherPub, sig, "content", "context", "2026-01-01T00:00:00Z")
	require.NoError(t, verr)
	require.False(t, ok)
}

func TestHasIdentity(t *testing.T) {
	dir := t.TempDir()
	require.False(t, HasIdentity(dir))

	id, err := Initialize(dir)
	require.NoError(t, err)
	require.NotEmpty(t, id.DID())
	require.True(t, HasIdentity(dir))
}

func TestInitializeReloadsSameDID(t *testing.T) {
	dir := t.TempDir()

	first, err := Initialize(dir)
	require.NoError(t, err)

	second, err := Initialize(dir)
	require.NoError(t, err)
	require.Equal(t, first.DID(), second.DID())
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original, err := Initialize(dir)
	require.NoError(t, err)
	exported := original.Export()

	importDir := t.TempDir()
	imported, err := Import(importDir, exported.SecretKeyHex)
	require.NoError(t, err)
	require.Equal(t, original.DID(), imported.DID())
}
