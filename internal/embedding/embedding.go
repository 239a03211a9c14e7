// Package embedding holds what the embedder implementations share.
package embedding

import "errors"

// ErrNotPrepared is returned by corpus-fitted embedders asked to embed text
// before Prepare has seen a corpus.
var ErrNotPrepared = errors.New("embedder not prepared")

// IsZero reports whether vec carries no signal, e.g. a TF-IDF vector for a
// query whose tokens are all out of vocabulary.
func IsZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
