package sync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seed(b byte) []byte {
	s := make([]byte, 32)
	for i := range s {
		s[i] = b
	}
	return s
}

func TestDeriveSyncKeyDeterministic(t *testing.T) {
	k1, err := DeriveSyncKey(seed(0x2a))
	require.NoError(t, err)
	k2, err := DeriveSyncKey(seed(0x2a))
	require.NoError(t, err)
	require.Equal(t, k1, k2)
	require.Len(t, k1, 32)
}

func TestDeriveSyncKeyDifferentSeeds(t *testing.T) {
	k1, err := DeriveSyncKey(seed(0x2a))
	require.NoError(t, err)
	k2, err := DeriveSyncKey(seed(0x2b))
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := DeriveSyncKey(seed(1))
	require.NoError(t, err)

	for _, payload := range [][]byte{
		[]byte(""),
		[]byte("예산 3000만원으로 확정"),
		make([]byte, 100*1024),
	} {
		blob, err := Encrypt(key, payload)
		require.NoError(t, err)
		plain, err := Decrypt(key, blob)
		require.NoError(t, err)
		require.Equal(t, payload, plain)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key1, _ := DeriveSyncKey(seed(1))
	key2, _ := DeriveSyncKey(seed(2))

	blob, err := Encrypt(key1, []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(key2, blob)
	require.Error(t, err)
}

func TestDecryptTamperedDataFails(t *testing.T) {
	key, _ := DeriveSyncKey(seed(1))
	blob, err := Encrypt(key, []byte("secret"))
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0xff
	_, err = Decrypt(key, blob)
	require.Error(t, err)
}

func TestEncryptJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	in := payload{Name: "예산 검토"}

	envelope, err := EncryptJSON(seed(7), in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, DecryptJSON(seed(7), envelope, &out))
	require.Equal(t, in, out)
}
