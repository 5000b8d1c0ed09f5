// Package embedding produces normalized 384-dimensional vectors for
// knowledge items and queries. It implements only the deterministic
// fallback path: a MiniLM-class transformer session is out of scope for
// this module (no ONNX runtime binding exists anywhere in the pack), so
// every call goes through the hashed pseudo-embedding below. Result carries
// IsFallback so callers can still distinguish the path, matching the
// contract's `(vector, is_fallback)` shape even though the model path is
// never taken here.
package embedding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// Dim is the fixed embedding width the whole store assumes.
const Dim = 384

// maxChars bounds how much of the input text contributes to the vector.
const maxChars = 500

// Result is the output of Embed.
type Result struct {
	Vector     []float32
	IsFallback bool
}

// Embedder produces embeddings. The zero value is ready to use.
type Embedder struct{}

// New returns a ready-to-use Embedder.
func New() *Embedder { return &Embedder{} }

// Embed returns a normalized 384-d vector for text. Never fails: an empty
// or all-ASCII string still yields a valid (possibly all-zero) vector.
func (e *Embedder) Embed(text string) Result {
	return Result{Vector: PseudoEmbed(text), IsFallback: true}
}

// PseudoEmbed is the deterministic hashed fallback embedding. For each of
// the first 500 Unicode code points of text, at each of the 384 output
// dimensions, it accumulates sin(code*(d+1)*0.1)*0.1 into a hashed index
// derived from the code point, its position, and the dimension. The result
// is L2-normalized.
func PseudoEmbed(text string) []float32 {
	vec := make([]float64, Dim)

	runes := []rune(text)
	if len(runes) > maxChars {
		runes = runes[:maxChars]
	}

	for i, r := range runes {
		code := uint32(r)
		for d := 0; d < Dim; d++ {
			idx := (code*31 + uint32(i)*17 + uint32(d)*37) & 0x7fffffff % Dim
			val := math.Sin(float64(code)*float64(d+1)*0.1) * 0.1
			vec[idx] += val
		}
	}

	return normalize(vec)
}

func normalize(vec []float64) []float32 {
	var sumSq float64
	for _, v := range vec {
		sumSq += v * v
	}
	out := make([]float32, len(vec))
	if sumSq == 0 {
		return out
	}
	norm := math.Sqrt(sumSq)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

// CosineSimilarity returns the cosine similarity of a and b, or 0 if either
// vector has zero norm. Does not require a and b to be pre-normalized.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// VectorToBlob serializes a vector as a concatenation of little-endian
// IEEE-754 float32 values.
func VectorToBlob(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// BlobToVector deserializes a vector produced by VectorToBlob. Returns an
// InvalidArgument error if the blob length is not a multiple of 4.
func BlobToVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, rerr.New(rerr.InvalidArgument, "embedding.BlobToVector",
			fmt.Sprintf("blob length %d is not a multiple of 4", len(blob)))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}

// IsValidDim reports whether vec has the expected dimensionality. Any
// stored vector of a different length is treated as corrupt and ignored
// by retrieval rather than causing a hard failure.
func IsValidDim(vec []float32) bool { return len(vec) == Dim }
