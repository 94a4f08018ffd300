package usp

// DefaultTaxonomy is the built-in trigger taxonomy used when no trigger
// document exists on disk. Category order is reporting order.
func DefaultTaxonomy() []Category {
	return []Category{
		{
			Name:        "visual",
			Description: "Visible effects a shopper can picture",
			Keywords: []string{
				"glow", "glowing", "glowy", "radiant", "dewy", "glass skin",
				"brightening", "luminous", "sparkle", "translucent",
			},
		},
		{
			Name:        "tactile",
			Description: "Texture and skin-feel language",
			Keywords: []string{
				"silky", "velvety", "bouncy", "melts in", "whipped", "buttery",
				"featherlight", "cushiony", "cooling gel", "watery texture",
			},
		},
		{
			Name:        "olfactory",
			Description: "Distinctive scent descriptions",
			Keywords: []string{
				"smells like", "rose scent", "citrus scent", "herbal scent",
				"clean scent", "spa smell", "fresh laundry",
			},
		},
		{
			Name:        "action",
			Description: "Sensations while applying",
			Keywords: []string{
				"tingling", "cooling", "warming", "instantly absorbs",
				"melts right in", "bounces back", "locks in",
			},
		},
		{
			Name:        "design",
			Description: "Packaging and applicator callouts",
			Keywords: []string{
				"pump bottle", "dropper", "spatula", "travel size",
				"refill", "packaging", "airless",
			},
		},
		{
			Name:        "reaction",
			Description: "Strong emotional reactions",
			Keywords: []string{
				"obsessed", "blown away", "shocked", "in love",
				"cannot live without", "dramatic difference", "wow",
			},
		},
		{
			Name:        "viral",
			Description: "Social-proof and virality markers",
			Keywords: []string{
				"tiktok", "viral", "sold out", "instagram", "everyone is talking",
				"influencer", "trending", "restocked",
			},
		},
	}
}

// DefaultExclusions are generic words with no USP value; sentences matching
// only these are discarded and discovery never proposes them.
func DefaultExclusions() []string {
	return []string{
		"good", "nice", "great", "love", "like", "best", "really",
		"very", "just", "product", "skin", "face", "use", "used",
		"bought", "buy", "ok", "okay", "fine", "nicely", "well",
	}
}
