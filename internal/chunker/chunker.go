// Package chunker splits section documents into indexable chunks.
package chunker

import (
	"strconv"

	"albumrag/internal/domain"
)

// Chunk types recorded under domain.MetaType.
const (
	TypeProse       = "prose"
	TypeEnumeration = "enumeration"
	TypeFacts       = "facts"
)

// newChunk copies the document metadata so chunks never share a map.
func newChunk(doc domain.Document, idx int, text string) domain.Chunk {
	meta := make(map[string]string, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	return domain.Chunk{
		DocumentID: doc.ID,
		ChunkID:    doc.ID + ":" + strconv.Itoa(idx),
		Text:       text,
		Index:      idx,
		Metadata:   meta,
	}
}
