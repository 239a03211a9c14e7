package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"albumrag/internal/catalog"
)

var bothAlbums = []string{"The Link", "From Mars to Sirius"}

func TestKeywordClassifier_Scenarios(t *testing.T) {
	k := NewKeywordClassifier(catalog.Default())

	tests := []struct {
		name     string
		query    string
		wantType QueryType
		sections []string
		albums   []string
	}{
		{
			name:     "tracklist count for one album",
			query:    "How many songs are in The Link?",
			wantType: QuerySingle,
			sections: []string{"tracklist"},
			albums:   []string{"The Link"},
		},
		{
			name:     "explicit comparison",
			query:    "Compare the technical analysis between The Link and From Mars to Sirius",
			wantType: QueryCompare,
			sections: []string{"technical_analysis"},
			albums:   bothAlbums,
		},
		{
			name:     "second album only",
			query:    "What is the guitar work like on From Mars to Sirius?",
			wantType: QuerySingle,
			sections: []string{"technical_analysis"},
			albums:   []string{"From Mars to Sirius"},
		},
		{
			name:     "comparison without compare keyword",
			query:    "What are the differences in lyrical themes between both albums?",
			wantType: QueryCompare,
			sections: []string{"lyrics_themes"},
			albums:   bothAlbums,
		},
		{
			name:     "no section keywords defaults to overview",
			query:    "What is The Link?",
			wantType: QuerySingle,
			sections: []string{"overview"},
			albums:   []string{"The Link"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := k.Classify(tt.query)
			assert.Equal(t, tt.wantType, plan.QueryType)
			assert.Equal(t, tt.sections, plan.Sections)
			assert.Equal(t, tt.albums, plan.Albums)
			assert.Equal(t, MethodKeywords, plan.Method)
			assert.Equal(t, DefaultKeywordConfidence, plan.Confidence)
		})
	}
}

func TestKeywordClassifier_AlbumExclusivity(t *testing.T) {
	k := NewKeywordClassifier(catalog.Default())

	assert.Equal(t, []string{"The Link"}, k.Classify("the link tracklist").Albums)
	assert.Equal(t, []string{"From Mars to Sirius"}, k.Classify("mars tracklist").Albums)
	assert.Equal(t, []string{"From Mars to Sirius"}, k.Classify("SIRIUS tracklist").Albums)
	assert.Equal(t, bothAlbums, k.Classify("link and mars tracklist").Albums)
	// Triggers of two albums select the whole catalog, even without a
	// comparison word.
	assert.Equal(t, bothAlbums, k.Classify("the link and sirius").Albums)
	assert.Equal(t, bothAlbums, k.Classify("tracklist please").Albums)
}

func TestKeywordClassifier_CompareTriggers(t *testing.T) {
	k := NewKeywordClassifier(catalog.Default())

	for _, q := range []string{
		"COMPARE the records",
		"a comparison of the records",
		"what is the difference",
		"list the differences",
		"link vs mars",
		"link versus mars",
		"tell me about both albums",
		"are both heavy",
	} {
		t.Run(q, func(t *testing.T) {
			assert.Equal(t, QueryCompare, k.Classify(q).QueryType)
		})
	}
	assert.Equal(t, QuerySingle, k.Classify("who produced the record").QueryType)
}

func TestKeywordClassifier_SectionScoring(t *testing.T) {
	k := NewKeywordClassifier(catalog.Default())

	t.Run("ShouldKeepCatalogOrderOnTies", func(t *testing.T) {
		// "meaning" belongs to lyrics_themes and philosophy.
		assert.Equal(t, []string{"lyrics_themes", "philosophy"}, k.Classify("what is the meaning").Sections)
	})

	t.Run("ShouldRankHighestFirstAndCapAtTwo", func(t *testing.T) {
		plan := k.Classify("Tell me about the live concert tour performance of The Link")
		// live_history scores 4; overview and technical_analysis tie at 1.
		assert.Equal(t, []string{"live_history", "overview"}, plan.Sections)
	})
}

func TestKeywordClassifier_Deterministic(t *testing.T) {
	k := NewKeywordClassifier(catalog.Default())
	q := "Compare recording and production on both albums"

	first := k.Classify(q)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, k.Classify(q))
	}
}

func TestKeywordClassifier_LargerCatalog(t *testing.T) {
	c, err := catalog.New(catalog.Catalog{
		Sections: []catalog.Section{{ID: "overview", Keywords: []string{"about"}}},
		Albums: []catalog.Album{
			{Name: "Terra Incognita", Triggers: []string{"terra"}},
			{Name: "The Way of All Flesh", Triggers: []string{"flesh"}},
			{Name: "Magma", Triggers: []string{"Magma"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	k := NewKeywordClassifier(c)

	assert.Equal(t, []string{"Magma"}, k.Classify("what is magma about").Albums)
	assert.Len(t, k.Classify("terra and flesh").Albums, 3)
}
