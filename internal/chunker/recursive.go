package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"albumrag/internal/domain"
)

// RecursiveChunker splits on paragraph, line, then word boundaries until
// chunks fit the configured character budget.
type RecursiveChunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if size <= 0 {
		return nil, errors.New("chunker: size must be greater than zero")
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be in [0, %d)", overlap, size)
	}
	return &RecursiveChunker{splitter: textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	)}, nil
}

func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	segments, err := c.splitter.SplitText(document.Content)
	if err != nil {
		return nil, fmt.Errorf("chunker: split %s: %w", document.Path, err)
	}
	var chunks []domain.Chunk
	for _, seg := range segments {
		text := strings.TrimSpace(seg)
		if text == "" {
			continue
		}
		chunks = append(chunks, newChunk(document, len(chunks), text))
	}
	return chunks, nil
}
