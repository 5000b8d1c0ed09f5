package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// Signature is the envelope attached to a signed knowledge item.
type Signature struct {
	DIDAuthor   string `json:"did_author"`
	Signature   string `json:"signature"`
	ContentHash string `json:"content_hash"`
	SignedAt    string `json:"signed_at"`
}

// CanonicalHash computes SHA-256(content || "|" || knowledgeType || "|" ||
// createdAt) over UTF-8 bytes with a literal ASCII pipe separator. The
// signature is taken over this hash, not the raw content.
func CanonicalHash(content, knowledgeType, createdAt string) [32]byte {
	joined := content + "|" + knowledgeType + "|" + createdAt
	return sha256.Sum256([]byte(joined))
}

// Sign produces a Signature over (content, knowledgeType, createdAt) using
// this identity's signing key.
func (id *Identity) Sign(content, knowledgeType, createdAt string) Signature {
	hash := CanonicalHash(content, knowledgeType, createdAt)
	sig := ed25519.Sign(id.signingKey, hash[:])
	return Signature{
		DIDAuthor:   id.did,
		Signature:   hex.EncodeToString(sig),
		ContentHash: hex.EncodeToString(hash[:]),
		SignedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// Verify recomputes the canonical hash from the given fields and checks it
// against sig.ContentHash (a mismatch means the content was modified and
// returns false, not an error), then resolves sig.DIDAuthor to a public key
// and verifies the signature over the hash.
func Verify(sig Signature, content, knowledgeType, createdAt string) (bool, error) {
	pub, err := DIDToPublicKey(sig.DIDAuthor)
	if err != nil {
		return false, err
	}
	return VerifyWithKey(pub, sig, content, knowledgeType, createdAt)
}

// VerifyWithKey is Verify but against an explicit public key instead of
// resolving one from sig.DIDAuthor — used when the caller already knows
// which key it expects to have signed (e.g. testing that a different
// identity's signature fails).
func VerifyWithKey(pub ed25519.PublicKey, sig Signature, content, knowledgeType, createdAt string) (bool, error) {
	hash := CanonicalHash(content, knowledgeType, createdAt)
	if hex.EncodeToString(hash[:]) != sig.ContentHash {
		return false, nil
	}

	sigBytes, err := hex.DecodeString(sig.Signature)
	if err != nil {
		return false, rerr.Wrap(rerr.Signature, "identity.VerifyWithKey: decode signature", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return false, rerr.New(rerr.Signature, "identity.VerifyWithKey",
			fmt.Sprintf("signature is %d bytes, want %d", len(sigBytes), ed25519.SignatureSize))
	}

	return ed25519.Verify(pub, hash[:], sigBytes), nil
}
