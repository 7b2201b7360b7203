package classifylead

// Field names read from the lead record.
const (
	FieldReasonForSelling = "ReasonForSelling"
	FieldStatus           = "Status"
	FieldState            = "State"
)

// Tier is the coarse distress classification; it drives the lead price.
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
)

const (
	PriceTier1 = 90
	PriceTier2 = 75
)

const (
	MotivationOther           = "OTHER"
	MotivationVacantProperty  = "VACANT_PROPERTY"
	MotivationKeywordDistress = "KEYWORD_DISTRESS"

	TagTier1 = "TIER_1_DISTRESS"
	TagTier2 = "TIER_2_GENERAL"
)

// Classification is derived from a lead record and never stored.
type Classification struct {
	Tier       Tier     `json:"tier"`
	Price      int      `json:"price"`
	Motivation string   `json:"motivation"`
	Tags       []string `json:"tags"`
}

// Price returns the lead price for a tier.
func (t Tier) Price() int {
	if t == Tier1 {
		return PriceTier1
	}
	return PriceTier2
}

func (t Tier) Tag() string {
	if t == Tier1 {
		return TagTier1
	}
	return TagTier2
}
