package identity

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// ed25519MulticodecPrefix is the two-byte multicodec tag for Ed25519 public
// keys, prepended before base58btc encoding.
var ed25519MulticodecPrefix = []byte{0xed, 0x01}

const didKeyPrefix = "did:key:z"

// PublicKeyToDID encodes a 32-byte Ed25519 public key as a did:key string:
// "did:key:z" + base58btc(0xed01 || pubkey).
func PublicKeyToDID(pub ed25519.PublicKey) string {
	tagged := make([]byte, 0, len(ed25519MulticodecPrefix)+len(pub))
	tagged = append(tagged, ed25519MulticodecPrefix...)
	tagged = append(tagged, pub...)
	return didKeyPrefix + base58.Encode(tagged)
}

// DIDToPublicKey decodes a did:key string back to its 32-byte Ed25519
// public key, validating the multibase prefix and multicodec tag.
func DIDToPublicKey(did string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(did, didKeyPrefix) {
		return nil, rerr.New(rerr.InvalidArgument, "identity.DIDToPublicKey",
			"missing did:key:z prefix")
	}
	encoded := did[len(didKeyPrefix):]

	decoded, err := base58.Decode(encoded)
	if err != nil {
		return nil, rerr.Wrap(rerr.InvalidArgument, "identity.DIDToPublicKey: base58 decode", err)
	}
	if len(decoded) != len(ed25519MulticodecPrefix)+ed25519.PublicKeySize {
		return nil, rerr.New(rerr.InvalidArgument, "identity.DIDToPublicKey",
			fmt.Sprintf("decoded length %d, want %d", len(decoded), len(ed25519MulticodecPrefix)+ed25519.PublicKeySize))
	}
	if decoded[0] != ed25519MulticodecPrefix[0] || decoded[1] != ed25519MulticodecPrefix[1] {
		return nil, rerr.New(rerr.InvalidArgument, "identity.DIDToPublicKey",
			"unexpected multicodec prefix, not an Ed25519 did:key")
	}
	return ed25519.PublicKey(decoded[2:]), nil
}

// ShortDID renders a did:key string as its first 8 and last 4 characters of
// the key portion (joined by "..."), for compact display. Returns did
// unchanged if it is too short to usefully shorten.
func ShortDID(did string) string {
	const prefixLen = len("did:key:")
	if len(did) <= 20 {
		return did
	}
	keyPart := did[prefixLen:]
	if len(keyPart) <= 12 {
		return did
	}
	return fmt.Sprintf("did:key:%s...%s", keyPart[:8], keyPart[len(keyPart)-4:])
}
