package chunker

import (
	"strings"

	"albumrag/internal/domain"
)

// SectionChunker keeps list-like sections whole so counting questions see
// the complete list, and hands everything else to a prose chunker.
type SectionChunker struct {
	prose domain.Chunker
	whole map[string]struct{}
}

func NewSectionChunker(prose domain.Chunker, wholeSections []string) *SectionChunker {
	whole := make(map[string]struct{}, len(wholeSections))
	for _, s := range wholeSections {
		whole[s] = struct{}{}
	}
	return &SectionChunker{prose: prose, whole: whole}
}

func (c *SectionChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	section := document.Metadata[domain.MetaSection]
	if _, ok := c.whole[section]; ok {
		text := strings.TrimSpace(document.Content)
		if text == "" {
			return nil, nil
		}
		ch := newChunk(document, 0, text)
		ch.Metadata[domain.MetaType] = wholeType(section)
		return []domain.Chunk{ch}, nil
	}
	chunks, err := c.prose.Chunk(document)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].Metadata[domain.MetaType] = TypeProse
	}
	return chunks, nil
}

func wholeType(section string) string {
	if section == "tracklist" {
		return TypeEnumeration
	}
	return TypeFacts
}
