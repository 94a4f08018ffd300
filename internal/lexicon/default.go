package lexicon

// Default returns the curated cosmetics-review lexicon. Keyword matching is
// substring-based over lowercased text, so families like "absorb"/"absorbs"
// are covered by the shortest form.
func Default() *Lexicon {
	lex := &Lexicon{
		Positive: []WeightedKeyword{
			{"love", 1.0}, {"amazing", 1.2}, {"excellent", 1.0}, {"perfect", 1.2},
			{"holy grail", 1.5}, {"obsessed", 1.0}, {"impressed", 1.0}, {"satisfied", 1.0},
			{"repurchase", 1.5}, {"buy again", 1.2}, {"buying again", 1.2},
			{"recommend", 1.2}, {"must have", 1.0}, {"staple", 0.8},
			{"moisturizing", 1.0}, {"moisturized", 1.0}, {"hydrating", 1.0}, {"dewy", 0.8}, {"plump", 0.8},
			{"soothing", 1.2}, {"calming", 1.0}, {"gentle", 1.2},
			{"absorbs quickly", 1.2}, {"absorbs fast", 1.2}, {"absorbs", 0.8}, {"sinks in", 0.8},
			{"lightweight", 0.8}, {"non-greasy", 1.0}, {"smooth", 1.0}, {"silky", 0.8}, {"soft", 0.8},
			{"refreshing", 1.0}, {"glowing", 0.8},
			{"affordable", 0.8}, {"worth it", 1.0}, {"great value", 1.0}, {"worth the price", 1.0},
			{"cleared up", 1.0}, {"improved", 1.0}, {"works well", 1.0}, {"effective", 0.8},
		},
		Negative: []WeightedKeyword{
			{"breakout", 1.2}, {"break out", 1.2}, {"broke out", 1.2}, {"broke me out", 1.5},
			{"pimple", 1.0}, {"acne", 1.0}, {"rash", 1.0}, {"redness", 0.8}, {"hives", 1.0},
			{"irritation", 1.0}, {"irritated", 1.0}, {"allergic", 1.0},
			{"stinging", 1.0}, {"burning", 0.8}, {"itchy", 0.8}, {"itching", 0.8},
			{"sticky", 1.0}, {"tacky", 0.8}, {"greasy", 0.8}, {"heavy", 0.8}, {"residue", 0.6},
			{"clogged", 1.0}, {"pilling", 1.0}, {"flaky", 0.8}, {"patchy", 0.8},
			{"drying", 0.8}, {"dried out", 1.0}, {"tight", 0.6},
			{"disappointed", 1.0}, {"disappointing", 1.0}, {"regret", 1.0},
			{"waste of money", 1.2}, {"useless", 1.0}, {"no effect", 0.8}, {"does nothing", 0.8},
			{"overpriced", 0.8}, {"expensive", 0.6}, {"pricey", 0.6},
			{"refund", 1.0}, {"returned", 0.8},
			{"fake", 0.8}, {"too strong", 0.8}, {"overpowering", 0.8},
		},
		NegationMarkers: []string{
			"no", "non", "not", "none", "never", "zero", "without",
			"hardly", "barely", "don't", "didn't", "doesn't",
			"isn't", "wasn't", "won't", "can't",
		},
		Reversible: []string{
			"sticky", "tacky", "greasy", "heavy", "residue",
			"irritation", "irritated", "breakout", "break out",
			"stinging", "burning", "itchy", "itching",
			"pilling", "flaky", "patchy", "clogged",
			"drying", "tight", "redness",
		},
		ContextRules: []ContextRule{
			{
				Keyword: "smell",
				PositivePatterns: []string{
					`smell\w*.{0,12}(good|nice|great|amazing|lovely|pleasant|subtle|faint|mild)`,
					`(good|nice|pleasant|subtle|faint|lovely) smell`,
					`(no|barely any|hardly any) smell`,
				},
				NegativePatterns: []string{
					`smell\w*.{0,15}(strong|bad|weird|off|awful|fake|chemical|artificial|cheap)`,
					`(bad|weird|awful|chemical|strange) smell`,
				},
				Default: Neutral,
			},
			{
				Keyword: "scent",
				PositivePatterns: []string{
					`scent.{0,15}(good|nice|great|lovely|pleasant|subtle|faint|mild|light|amazing)`,
					`(good|nice|pleasant|subtle|faint|lovely|light) scent`,
					`(no|barely any|hardly any) scent`,
				},
				NegativePatterns: []string{
					`scent.{0,15}(strong|bad|weird|off|awful|fake|chemical|artificial|cheap|overpowering)`,
					`(strong|bad|weird|awful|chemical|overpowering) scent`,
				},
				Default: Neutral,
			},
			{
				Keyword: "fragrance",
				PositivePatterns: []string{
					`fragrance.{0,12}(free|good|nice|subtle|light|pleasant)`,
					`(light|subtle|pleasant|no) fragrance`,
				},
				NegativePatterns: []string{
					`fragrance.{0,15}(strong|heavy|overpowering|artificial|fake|cheap)`,
					`(strong|heavy|overpowering|artificial) fragrance`,
				},
				Default: Neutral,
			},
			{
				Keyword: "irritation",
				PositivePatterns: []string{
					`(no|not|without|zero|never)[\s,.]{0,3}irritation`,
					`irritation[- ]?free`,
					`(didn't|doesn't|never).{0,12}irritat`,
					`(sensitive|reactive).{0,20}irritation.{0,12}(none|no\b|never|fine|okay)`,
				},
				NegativePatterns: []string{
					`(caused|causes|causing|got|had|some|slight|severe).{0,6}irritation`,
					`irritation.{0,12}(after|from|when|every time)`,
				},
				Default: Negative,
			},
			{
				Keyword: "breakout",
				PositivePatterns: []string{
					`(no|not|without|zero|never)[\s,.]{0,3}break ?outs?`,
					`break ?outs?.{0,20}(cleared|gone|stopped|disappeared|went away)`,
				},
				NegativePatterns: []string{
					`(caused|causes|got|new|more|bad).{0,6}break ?outs?`,
					`break ?outs?.{0,12}(after|since|from)`,
				},
				Default: Negative,
			},
			{
				Keyword: "sticky",
				PositivePatterns: []string{
					`(not|no|isn't|never|barely|hardly|without).{0,8}sticky`,
					`sticky.{0,10}at first.{0,20}(absorbs|sinks|settles)`,
				},
				NegativePatterns: []string{
					`(too|so|very|really|super) sticky`,
					`sticky (residue|feeling|film|finish)`,
				},
				Default: Negative,
			},
		},
		ReversalRules: []ReversalRule{
			{
				Pattern:  `(used to|previously|always|constantly).{0,40}(break ?outs?|acne|irritation|pimples?|redness).{0,60}(clear(ed)?( up)?|gone|disappeared|went away|no more|stopped|calmed|faded)`,
				Polarity: Positive,
				Score:    2.0,
			},
			{
				Pattern:  `(break ?outs?|acne|irritation|stickiness|redness).{0,30}\b(but|until|then)\b.{0,40}(gone|cleared|no longer|stopped|disappeared|resolved|went away)`,
				Polarity: Positive,
				Score:    2.0,
			},
			{
				Pattern:  `(worried|afraid|concerned|nervous).{0,30}(irritation|break ?outs?|breaking out|stickiness|reaction).{0,30}\b(none|no|never|didn't|not)\b`,
				Polarity: Positive,
				Score:    2.0,
			},
			{
				Pattern:  `(sensitive|reactive)( skin)?.{0,40}\b(no|zero|without|never)\b.{0,12}(irritation|break ?outs?|redness|reaction|sting)`,
				Polarity: Positive,
				Score:    2.0,
			},
			{
				Pattern:  `(since|after) (using|switching to|starting).{0,40}\b(no|zero|fewer|less|without)\b.{0,12}(break ?outs?|irritation|redness|acne)`,
				Polarity: Positive,
				Score:    2.0,
			},
		},
		Categories: []CategoryKeywords{
			{"moisture", []string{"moistur", "hydrat", "dewy", "dry", "drying", "tight"}},
			{"absorption", []string{"absorb", "sinks in", "soaks in"}},
			{"irritation", []string{"irritat", "sooth", "gentle", "sting", "burn", "breakout", "break out", "sensitive"}},
			{"scent", []string{"scent", "smell", "fragrance", "perfume"}},
			{"texture", []string{"texture", "sticky", "greasy", "lightweight", "smooth", "silky", "heavy"}},
			{"longevity", []string{"lasts", "lasting", "wears off", "fades", "stays on"}},
			{"value", []string{"price", "value", "affordable", "expensive", "cheap", "worth"}},
			{"efficacy", []string{"works", "effect", "improv", "result", "difference"}},
		},
		StrengthGroups: []SynthesisGroup{
			{"hydration", []string{"moistur", "hydrat", "dewy", "plump"}, "Strong hydration that keeps skin comfortable through the day"},
			{"absorption", []string{"absorb", "lightweight", "sinks in", "non-greasy"}, "Absorbs quickly without leaving residue"},
			{"gentleness", []string{"gentle", "sooth", "calming", "no irritation", "no breakout", "irritation"}, "Gentle enough for sensitive skin, with irritation rarely reported"},
			{"texture", []string{"smooth", "silky", "soft"}, "Smooth, pleasant texture and easy application"},
			{"value", []string{"affordable", "worth", "value"}, "Strong value for the price point"},
			{"loyalty", []string{"repurchase", "recommend", "buy again", "buying again", "holy grail", "staple"}, "High repurchase and recommendation intent"},
		},
		WeaknessGroups: []SynthesisGroup{
			{"stickiness", []string{"sticky", "tacky", "greasy", "heavy", "residue"}, "Some users find the finish sticky or heavy"},
			{"irritation", []string{"irritation", "irritated", "breakout", "break out", "broke", "pimple", "acne", "sting", "burn", "itch", "rash", "redness"}, "Caused irritation or breakouts for a subset of users"},
			{"scent", []string{"smell", "scent", "fragrance", "overpowering", "too strong"}, "Scent is polarizing; several reviews call it strong or artificial"},
			{"price", []string{"expensive", "overpriced", "pricey", "waste of money"}, "Price is seen as high relative to the payoff"},
			{"efficacy", []string{"no effect", "does nothing", "useless", "disappoint"}, "Some users could not notice a visible effect"},
			{"dryness", []string{"drying", "dried out", "tight", "flaky"}, "Reported drying or tightness on some skin types"},
		},
	}

	if err := lex.compile(); err != nil {
		// Built-in patterns are constants; a compile failure is a programming error.
		panic(err)
	}

	return lex
}
