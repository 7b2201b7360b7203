package classifylead

import "strings"

// Rule pairs a lowercase substring with the motivation code it yields.
// Rule lists are scanned in order and the first match wins.
type Rule struct {
	Pattern    string
	Motivation string
}

func phraseRule(phrase string) Rule {
	return Rule{
		Pattern:    phrase,
		Motivation: strings.ReplaceAll(strings.ToUpper(phrase), " ", "_"),
	}
}

func keywordRule(keyword string) Rule {
	return Rule{Pattern: keyword, Motivation: MotivationKeywordDistress}
}

// Tier1Reasons are the high-distress dropdown selections. "financial" is
// what the form sends for "Behind on payments / taxes".
var Tier1Reasons = []Rule{
	phraseRule("inherited"),
	phraseRule("foreclosure"),
	phraseRule("financial"),
	phraseRule("tired landlord"),
	phraseRule("vacant"),
	phraseRule("divorce"),
}

// DistressKeywords can upgrade free text to tier 1 when no reason matched.
var DistressKeywords = []Rule{
	// occupancy
	keywordRule("vacant"),
	keywordRule("empty"),
	keywordRule("no one living"),
	// condition
	keywordRule("needs repairs"),
	keywordRule("roof"),
	keywordRule("foundation"),
	keywordRule("fire damage"),
	keywordRule("water damage"),
	keywordRule("mold"),
	// landlord
	keywordRule("tenants"),
	keywordRule("evict"),
	// delinquency
	keywordRule("behind"),
	keywordRule("late payments"),
	keywordRule("taxes"),
	// probate
	keywordRule("probate"),
	keywordRule("estate"),
	// urgency
	keywordRule("asap"),
	keywordRule("urgent"),
	keywordRule("foreclosure"),
}

// Tier2Reasons only set the motivation of a general lead.
var Tier2Reasons = []Rule{
	phraseRule("relocating"),
	phraseRule("downsizing"),
	phraseRule("upgrading"),
	phraseRule("other"),
}

// VacantStatuses are exact (trimmed, lowercased) occupancy values that force tier 1.
var VacantStatuses = []string{"vacant", "empty"}

// firstMatch returns the first rule whose pattern occurs in text. text must
// already be lowercased.
func firstMatch(rules []Rule, text string) (Rule, bool) {
	for _, rule := range rules {
		if strings.Contains(text, rule.Pattern) {
			return rule, true
		}
	}
	return Rule{}, false
}
