package catalog

// Default returns the Gojira liner-notes catalog: two albums and fourteen
// sections.
func Default() *Catalog {
	c, err := New(Catalog{
		Subject:        "Gojira albums",
		DefaultSection: "overview",
		Sections: []Section{
			{ID: "tracklist", Keywords: []string{"track", "song", "song list", "tracks", "songs", "how many songs"}, Hint: "Tracklist questions"},
			{ID: "overview", Keywords: []string{"overview", "summary", "general", "about", "introduction"}, Hint: "General/about"},
			{ID: "musical_characteristics", Keywords: []string{"musical", "sound", "style", "musical style", "characteristics"}, Hint: "Musical style/sound"},
			{ID: "lyrics_themes", Keywords: []string{"lyric", "theme", "lyrical", "themes", "meaning", "lyrics", "lyrical themes"}, Hint: "Lyrics/meaning/themes"},
			{ID: "reception_influence", Keywords: []string{"reception", "critic", "review", "influence", "reviews", "critical"}, Hint: "Reviews/critical"},
			{ID: "technical_analysis", Keywords: []string{"technical", "guitar", "drum", "bass", "vocal", "performance", "technique", "instrument"}, Hint: "Guitar/drum/bass/technical"},
			{ID: "cultural_context", Keywords: []string{"cultural", "culture", "impact", "society", "cultural impact"}},
			{ID: "recording_production", Keywords: []string{"recording", "production", "studio", "producer", "recorded", "mixed"}, Hint: "Recording/production"},
			{ID: "live_history", Keywords: []string{"live", "concert", "performance", "tour", "venue", "live performance"}, Hint: "Live/concerts"},
			{ID: "commercial_performance", Keywords: []string{"commercial", "sales", "chart", "success", "sold"}, Hint: "Sales/commercial"},
			{ID: "philosophy", Keywords: []string{"philosophy", "philosophical", "meaning", "spiritual", "wisdom", "consciousness"}, Hint: "Philosophy/spiritual"},
			{ID: "conclusion", Keywords: []string{"conclusion", "summary", "overall", "final"}},
			{ID: "artistic_achievement", Keywords: []string{"achievement", "artistic", "accomplishment", "success", "legacy"}},
			{ID: "basic_info", Keywords: []string{"release", "date", "label", "genre", "length", "band members", "producer", "when was", "basic"}},
		},
		Albums: []Album{
			{Name: "The Link", Triggers: []string{"link"}},
			{Name: "From Mars to Sirius", Triggers: []string{"mars", "sirius"}},
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func defaultCompareTriggers() []string {
	return []string{"compare", "comparison", "difference", "differences", "vs", "versus", "both albums", "both"}
}
