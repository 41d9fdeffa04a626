// Package token implements token counting and chunking so prompts stay
// within the LLM's context window.
package token

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// specialPattern matches control-token-looking substrings like "<|im_start|>".
var specialPattern = regexp.MustCompile(`<\|[^|]+?\|>`)

// sanitizeSpecialTokens rewrites "<|x|>" into "< |x| >" so the tokenizer
// never treats embedded text as control tokens.
func sanitizeSpecialTokens(text string) string {
	return specialPattern.ReplaceAllStringFunc(text, func(m string) string {
		return "< |" + m[2:len(m)-2] + "| >"
	})
}

// Budgeter counts tokens and splits oversized inputs into overlapping
// chunks sized for iterative summarization.
type Budgeter struct {
	// MaxContext is the LLM context window in tokens.
	MaxContext int
	// ChunkSize is the target chunk size for iterative folding.
	ChunkSize int
	// Overlap is the token overlap between consecutive text chunks.
	Overlap int

	encoder *tiktoken.Tiktoken
}

// NewBudgeter creates a Budgeter over the cl100k_base encoding, falling
// back to p50k_base if it cannot be loaded.
func NewBudgeter(maxContext int) (*Budgeter, error) {
	if maxContext <= 0 {
		maxContext = 8192
	}

	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		slog.Warn("could not load cl100k_base encoding, falling back to p50k_base", "error", err)
		encoder, err = tiktoken.GetEncoding("p50k_base")
		if err != nil {
			return nil, err
		}
	}

	chunkSize := maxContext / 2
	return &Budgeter{
		MaxContext: maxContext,
		ChunkSize:  chunkSize,
		Overlap:    chunkSize / 10,
		encoder:    encoder,
	}, nil
}

// Count returns the number of tokens in text.
func (b *Budgeter) Count(text string) int {
	return len(b.encoder.Encode(sanitizeSpecialTokens(text), nil, nil))
}

// ChunkText splits a large text into overlapping chunks of ChunkSize
// tokens. A trailing remainder shorter than half a chunk is merged into the
// previous chunk rather than emitted on its own.
func (b *Budgeter) ChunkText(text string) []string {
	tokens := b.encoder.Encode(sanitizeSpecialTokens(text), nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	chunkSize := b.ChunkSize
	stride := chunkSize - b.Overlap

	var chunks [][]int
	i := 0
	for {
		if i+chunkSize >= len(tokens) {
			chunks = append(chunks, tokens[i:])
			break
		}
		chunks = append(chunks, tokens[i:i+chunkSize])
		i += stride

		if i+chunkSize >= len(tokens) && len(tokens)-i < chunkSize/2 {
			chunks[len(chunks)-1] = tokens[i-stride:]
			break
		}
	}

	out := make([]string, len(chunks))
	for idx, chunk := range chunks {
		out[idx] = b.encoder.Decode(chunk)
	}
	return out
}

// ChunkSummaries greedily packs a list of summaries into chunks of at most
// ChunkSize tokens, joined by "; ". A single summary larger than the chunk
// size becomes its own chunk without splitting.
func (b *Budgeter) ChunkSummaries(summaries []string) []string {
	if len(summaries) == 0 {
		return nil
	}

	const separator = "; "
	sepCost := b.Count(separator)

	var chunks []string
	var current []string
	currentTokens := 0

	for _, summary := range summaries {
		count := b.Count(summary)

		if count > b.ChunkSize {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, separator))
				current = nil
				currentTokens = 0
			}
			chunks = append(chunks, summary)
			continue
		}

		cost := count
		if len(current) > 0 {
			cost += sepCost
		}

		if currentTokens+cost > b.ChunkSize {
			chunks = append(chunks, strings.Join(current, separator))
			current = []string{summary}
			currentTokens = count
		} else {
			current = append(current, summary)
			currentTokens += cost
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, separator))
	}
	return chunks
}
