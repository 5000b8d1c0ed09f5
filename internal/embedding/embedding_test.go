package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPseudoEmbedDeterministic(t *testing.T) {
	a := PseudoEmbed("예산 3000만원으로 확정")
	b := PseudoEmbed("예산 3000만원으로 확정")
	require.Equal(t, a, b)
	require.Len(t, a, Dim)
}

func TestPseudoEmbedDistinguishesInputs(t *testing.T) {
	a := PseudoEmbed("클라이언트 컨펌 완료")
	b := PseudoEmbed("계약서 리스크 발견")
	require.NotEqual(t, a, b)
	require.Less(t, CosineSimilarity(a, b), 0.999)
}

func TestPseudoEmbedIsNormalized(t *testing.T) {
	vec := PseudoEmbed("normalize me please")
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	require.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-5)
}

func TestPseudoEmbedEmptyStringIsZeroVector(t *testing.T) {
	vec := PseudoEmbed("")
	for _, v := range vec {
		require.Equal(t, float32(0), v)
	}
}

func TestCosineSimilaritySelf(t *testing.T) {
	vec := PseudoEmbed("self similarity check")
	require.InDelta(t, 1.0, CosineSimilarity(vec, vec), 1e-5)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	zero := make([]float32, Dim)
	vec := PseudoEmbed("anything")
	require.Equal(t, 0.0, CosineSimilarity(zero, vec))
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := PseudoEmbed("blob round trip")
	blob := VectorToBlob(vec)
	require.Len(t, blob, Dim*4)

	back, err := BlobToVector(blob)
	require.NoError(t, err)
	require.Equal(t, vec, back)
}

func TestBlobToVectorRejectsMisalignedLength(t *testing.T) {
	_, err := BlobToVector([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestIsValidDim(t *testing.T) {
	require.True(t, IsValidDim(make([]float32, Dim)))
	require.False(t, IsValidDim(make([]float32, Dim-1)))
}
