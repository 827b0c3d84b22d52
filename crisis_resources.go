package companionsdk

// ──────────────────────────────────────────────
// Default resource catalog
// ──────────────────────────────────────────────

// ResourceCatalog is the immutable resource configuration for the
// response selector. Hotlines lead the list for severe cases, followed by
// type-specific entries; SelfHelp covers lower-severity cases.
type ResourceCatalog struct {
	Hotlines []Resource                `yaml:"hotlines"`
	ByType   map[CrisisType][]Resource `yaml:"by_type"`
	SelfHelp []Resource                `yaml:"self_help"`
}

// DefaultResourceCatalog returns the built-in US-centric resource catalog.
func DefaultResourceCatalog() *ResourceCatalog {
	return &ResourceCatalog{
		Hotlines: []Resource{
			{
				Name:         "988 Suicide & Crisis Lifeline",
				Contact:      "988",
				Description:  "Free, confidential crisis support",
				Availability: "24/7",
			},
			{
				Name:         "Crisis Text Line",
				Contact:      "Text HOME to 741741",
				Description:  "Text-based crisis counseling",
				Availability: "24/7",
			},
			{
				Name:         "SAMHSA National Helpline",
				Contact:      "1-800-662-4357",
				Description:  "Mental health and substance use support",
				Availability: "24/7",
			},
		},
		ByType: map[CrisisType][]Resource{
			CrisisSuicide: {
				{
					Name:         "International Association for Suicide Prevention",
					Contact:      "https://www.iasp.info/resources/Crisis_Centres/",
					Description:  "Directory of crisis centers worldwide",
					Availability: "24/7",
				},
			},
			CrisisSelfHarm: {
				{
					Name:        "Calm Harm",
					Contact:     "https://calmharm.co.uk",
					Description: "App with techniques to resist self-harm urges",
				},
				{
					Name:         "Self-Injury Outreach & Support",
					Contact:      "https://sioutreach.org",
					Description:  "Self-harm recovery resources",
					Availability: "online",
				},
			},
			CrisisAbuse: {
				{
					Name:         "National Domestic Violence Hotline",
					Contact:      "1-800-799-7233",
					Description:  "Confidential support for abuse survivors",
					Availability: "24/7",
				},
			},
		},
		SelfHelp: []Resource{
			{
				Name:        "7 Cups",
				Contact:     "https://www.7cups.com",
				Description: "Free emotional support from trained listeners",
			},
			{
				Name:        "Headspace",
				Contact:     "https://www.headspace.com",
				Description: "Guided meditation and stress relief",
			},
			{
				Name:        "MoodGYM",
				Contact:     "https://moodgym.com.au",
				Description: "Interactive CBT-based self-help program",
			},
		},
	}
}
