package companionsdk

// ──────────────────────────────────────────────
// Default crisis phrase catalog
// ──────────────────────────────────────────────

// TieredPhrases holds the phrase lists for one crisis type.
// High-tier matches raise severity to at least 8, moderate to 5, low to 3.
type TieredPhrases struct {
	High     []string `yaml:"high"`
	Moderate []string `yaml:"moderate"`
	Low      []string `yaml:"low"`
}

// PatternCatalog is the immutable phrase configuration for the detector.
// Iteration order over Types is fixed so detection stays deterministic.
type PatternCatalog struct {
	Types     []CrisisType                 `yaml:"-"`
	Phrases   map[CrisisType]TieredPhrases `yaml:"phrases"`
	Immediacy []string                     `yaml:"immediacy"`
}

// DefaultPatternCatalog returns the built-in English phrase catalog.
//
// Override via a custom catalog or LoadCatalogFile() for alternate
// languages and tuning.
func DefaultPatternCatalog() *PatternCatalog {
	return &PatternCatalog{
		Types: []CrisisType{
			CrisisSuicide,
			CrisisSelfHarm,
			CrisisViolence,
			CrisisAbuse,
			CrisisMedical,
			CrisisEmotional,
		},
		Phrases: map[CrisisType]TieredPhrases{
			CrisisSuicide: {
				High: []string{
					"kill myself", "end my life", "want to die", "suicide",
					"better off dead", "no reason to live", "have a plan",
					"end it all", "take my own life",
				},
				Moderate: []string{
					"don't want to be here", "wish i was dead", "disappear forever",
					"everyone would be better without me", "tired of living",
				},
				Low: []string{
					"what's the point", "nothing matters anymore", "give up on everything",
				},
			},
			CrisisSelfHarm: {
				High: []string{
					"cut myself", "hurt myself", "burning myself", "harming myself",
				},
				Moderate: []string{
					"want to feel pain", "deserve to hurt", "punish myself",
				},
				Low: []string{
					"feel numb", "need to feel something",
				},
			},
			CrisisViolence: {
				High: []string{
					"kill them", "hurt someone", "make them pay", "going to attack",
				},
				Moderate: []string{
					"so angry i could", "want to hurt", "lose control and",
				},
				Low: []string{
					"furious at everyone", "rage inside",
				},
			},
			CrisisAbuse: {
				High: []string{
					"he hits me", "she hits me", "being abused", "afraid of him",
					"afraid of her", "threatens to hurt me",
				},
				Moderate: []string{
					"scared to go home", "controls everything i do", "won't let me leave",
				},
				Low: []string{
					"treats me badly", "yells at me constantly",
				},
			},
			CrisisMedical: {
				High: []string{
					"overdose", "took too many pills", "can't breathe", "chest pain",
					"bleeding badly",
				},
				Moderate: []string{
					"feel really sick", "haven't eaten in days", "dizzy and faint",
				},
				Low: []string{
					"not sleeping at all", "exhausted all the time",
				},
			},
			CrisisEmotional: {
				High: []string{
					"complete breakdown", "can't take it anymore", "falling apart completely",
				},
				Moderate: []string{
					"so depressed", "hopeless", "completely alone", "nobody cares about me",
					"overwhelmed and drowning",
				},
				Low: []string{
					"anxious", "stressed out", "feeling down", "really sad", "lonely",
				},
			},
		},
		Immediacy: []string{
			"right now", "tonight", "today", "going to", "about to",
		},
	}
}
