package llm

import (
	"context"
	"crypto/md5"
	"encoding/binary"
)

// FakeClient returns a static summary for any prompt. It stands in for a
// remote API during debugging and in tests.
type FakeClient struct{}

func (c *FakeClient) GenerateSummary(ctx context.Context, prompt string) (string, error) {
	return "This part implements important functionalities.", nil
}

// FakeEmbedder produces deterministic pseudo-embeddings derived from the
// text's digest, so repeated runs write identical vectors.
type FakeEmbedder struct {
	Dim int
}

func (e *FakeEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		digest := md5.Sum([]byte(text))
		vec := make([]float32, e.Dim)
		for j := range vec {
			word := binary.LittleEndian.Uint32(digest[(j*4)%12 : (j*4)%12+4])
			vec[j] = float32(word%2000)/1000.0 - 1.0
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *FakeEmbedder) Dimension() int {
	return e.Dim
}
