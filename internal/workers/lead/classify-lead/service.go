package classifylead

import (
	"fmt"
	"strings"
)

// Classify derives tier, price, motivation and tags from a lead's fields.
// It is pure and total: missing or non-string fields read as "".
func Classify(fields map[string]interface{}) Classification {
	reasonText := strings.ToLower(stringField(fields, FieldReasonForSelling))
	statusText := strings.ToLower(strings.TrimSpace(stringField(fields, FieldStatus)))
	state := strings.ToUpper(stringField(fields, FieldState))

	tier := Tier2
	motivation := MotivationOther

	if rule, ok := firstMatch(Tier1Reasons, reasonText); ok {
		tier = Tier1
		motivation = rule.Motivation
	}

	// Runs even when a reason already matched; it only fills an unset motivation.
	if isVacantStatus(statusText) {
		tier = Tier1
		if motivation == MotivationOther {
			motivation = MotivationVacantProperty
		}
	}

	if tier == Tier2 {
		if rule, ok := firstMatch(DistressKeywords, reasonText); ok {
			tier = Tier1
			motivation = rule.Motivation
		}
	}

	if tier == Tier2 {
		if rule, ok := firstMatch(Tier2Reasons, reasonText); ok {
			motivation = rule.Motivation
		}
	}

	price := tier.Price()

	tags := make([]string, 0, 4)
	tags = append(tags, tier.Tag())
	if state != "" {
		tags = append(tags, "STATE_"+state)
	}
	tags = append(tags, "MOTIVATION_"+motivation)
	tags = append(tags, fmt.Sprintf("PRICE_%d", price))

	return Classification{
		Tier:       tier,
		Price:      price,
		Motivation: motivation,
		Tags:       tags,
	}
}

func isVacantStatus(status string) bool {
	for _, s := range VacantStatuses {
		if status == s {
			return true
		}
	}
	return false
}

func stringField(fields map[string]interface{}, name string) string {
	if fields == nil {
		return ""
	}
	s, _ := fields[name].(string)
	return s
}
