package service

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"albumrag/internal/catalog"
	"albumrag/internal/config"
	"albumrag/internal/domain"
	"albumrag/internal/logger"
)

// LoadCorpus reads every album directory of the manifest and returns one
// document per section file. Files whose section or album the catalog does
// not know are skipped with a warning.
func LoadCorpus(corpus config.CorpusConfig, cat *catalog.Catalog, log logger.Logger) ([]domain.Document, error) {
	var documents []domain.Document
	for _, src := range corpus.Albums {
		album, ok := cat.MatchAlbum(src.Name)
		if !ok {
			log.Warn("skipping album not in catalog", "album", src.Name)
			continue
		}
		dir := src.Dir
		if !filepath.IsAbs(dir) && corpus.Root != "" {
			dir = filepath.Join(corpus.Root, dir)
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			log.Warn("no section files found", "album", album, "dir", dir)
		}
		sort.Strings(matches)
		for _, path := range matches {
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			section := sectionFor(stem, corpus.FileSections)
			if !cat.HasSection(section) {
				log.Warn("skipping file with unknown section", "path", path, "section", section)
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			documents = append(documents, domain.Document{
				ID:      hashString(album + "/" + section + "/" + filepath.Base(path)),
				Path:    path,
				Content: string(data),
				Metadata: map[string]string{
					domain.MetaAlbum:   album,
					domain.MetaSection: section,
					domain.MetaSource:  filepath.Base(path),
				},
			})
		}
	}
	if len(documents) == 0 {
		return nil, ErrNoDocuments
	}
	return documents, nil
}

func sectionFor(stem string, mapping map[string]string) string {
	key := strings.ToLower(stem)
	if s, ok := mapping[key]; ok {
		return s
	}
	return key
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
