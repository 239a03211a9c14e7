// Package catalog holds the fixed set of albums and sections the corpus is
// indexed by, plus the keyword lexicon used by rule-based routing.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Section is a named topical slice of an album's liner notes.
type Section struct {
	ID       string   `yaml:"id"`
	Keywords []string `yaml:"keywords"`
	// Hint describes the questions this section answers, for the
	// classifier prompt. Optional.
	Hint string `yaml:"hint,omitempty"`
}

// Album is a known album. Triggers are lower-case substrings that identify
// the album in free text.
type Album struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
}

// Catalog is an immutable lookup table of sections and albums. Build one
// with Default or New and do not modify it afterwards.
type Catalog struct {
	Subject         string    `yaml:"subject"`
	DefaultSection  string    `yaml:"default_section"`
	CompareTriggers []string  `yaml:"compare_triggers"`
	Sections        []Section `yaml:"sections"`
	Albums          []Album   `yaml:"albums"`

	sectionIdx map[string]int
	albumIdx   map[string]int
}

// New validates c and builds its lookup indexes.
func New(c Catalog) (*Catalog, error) {
	if len(c.Sections) == 0 {
		return nil, errors.New("catalog: no sections")
	}
	if len(c.Albums) == 0 {
		return nil, errors.New("catalog: no albums")
	}
	c.Sections = append([]Section(nil), c.Sections...)
	for i := range c.Sections {
		c.Sections[i].Keywords = lowerAll(c.Sections[i].Keywords)
	}
	c.Albums = append([]Album(nil), c.Albums...)
	for i := range c.Albums {
		c.Albums[i].Triggers = lowerAll(c.Albums[i].Triggers)
	}
	c.CompareTriggers = lowerAll(c.CompareTriggers)

	c.sectionIdx = make(map[string]int, len(c.Sections))
	for i, s := range c.Sections {
		if s.ID == "" {
			return nil, fmt.Errorf("catalog: section %d has empty id", i)
		}
		if _, dup := c.sectionIdx[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate section %q", s.ID)
		}
		c.sectionIdx[s.ID] = i
	}
	c.albumIdx = make(map[string]int, len(c.Albums))
	for i, a := range c.Albums {
		key := strings.ToLower(a.Name)
		if key == "" {
			return nil, fmt.Errorf("catalog: album %d has empty name", i)
		}
		if _, dup := c.albumIdx[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate album %q", a.Name)
		}
		c.albumIdx[key] = i
	}
	if c.DefaultSection == "" {
		c.DefaultSection = "overview"
	}
	if _, ok := c.sectionIdx[c.DefaultSection]; !ok {
		return nil, fmt.Errorf("catalog: default section %q is not a known section", c.DefaultSection)
	}
	if len(c.CompareTriggers) == 0 {
		c.CompareTriggers = defaultCompareTriggers()
	}
	if c.Subject == "" {
		c.Subject = "the albums"
	}
	return &c, nil
}

// HasSection reports whether id is a catalog section.
func (c *Catalog) HasSection(id string) bool {
	_, ok := c.sectionIdx[id]
	return ok
}

// MatchAlbum resolves name case-insensitively to the catalog spelling.
func (c *Catalog) MatchAlbum(name string) (string, bool) {
	i, ok := c.albumIdx[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return c.Albums[i].Name, true
}

// SectionIDs returns section identifiers in declaration order.
func (c *Catalog) SectionIDs() []string {
	out := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		out[i] = s.ID
	}
	return out
}

// AlbumNames returns album names in declaration order.
func (c *Catalog) AlbumNames() []string {
	out := make([]string, len(c.Albums))
	for i, a := range c.Albums {
		out[i] = a.Name
	}
	return out
}

// CoversAllAlbums reports whether albums names every catalog album.
func (c *Catalog) CoversAllAlbums(albums []string) bool {
	seen := make(map[int]struct{}, len(albums))
	for _, a := range albums {
		if i, ok := c.albumIdx[strings.ToLower(a)]; ok {
			seen[i] = struct{}{}
		}
	}
	return len(seen) == len(c.Albums)
}

func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
