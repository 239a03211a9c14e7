package chunker

import (
	"regexp"
	"strings"

	"albumrag/internal/domain"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// SentenceChunker groups whole sentences into fixed-size windows. Adjacent
// windows share overlap sentences, so overlap is always below size.
type SentenceChunker struct {
	size    int
	overlap int
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	size := sentencesPerChunk
	if size <= 0 {
		size = 5
	}
	overlap := min(max(overlapSentences, 0), size-1)
	return &SentenceChunker{size: size, overlap: overlap}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := splitSentences(document.Content)
	if len(sentences) == 0 {
		return nil, nil
	}
	stride := c.size - c.overlap
	var chunks []domain.Chunk
	for start := 0; ; start += stride {
		end := min(start+c.size, len(sentences))
		chunks = append(chunks, newChunk(document, len(chunks), strings.Join(sentences[start:end], " ")))
		if end == len(sentences) {
			return chunks, nil
		}
	}
}

// splitSentences cuts after terminal punctuation. A trailing fragment
// without punctuation is kept as its own sentence.
func splitSentences(text string) []string {
	var out []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		loc := sentenceEnd.FindStringIndex(rest)
		if loc == nil {
			out = append(out, rest)
			break
		}
		if s := strings.TrimSpace(rest[:loc[1]]); s != "" {
			out = append(out, s)
		}
		rest = strings.TrimSpace(rest[loc[1]:])
	}
	return out
}
