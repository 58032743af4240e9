package models

// Usage difficulty labels as they appear in the meta source.
const (
	DifficultyNovice       = "Novice"
	DifficultyIntermediate = "Intermediate"
	DifficultyExpert       = "Expert"
	DifficultyUnknown      = "Unknown"
)

// AvgDifficultyUnknown is the ordinal used when UsageDifficulty is missing or unrecognised.
const AvgDifficultyUnknown = 0.0

// CategoryUnknown is the default for categorical columns that are absent or empty.
const CategoryUnknown = "Unknown"

// DifficultyOrdinal encodes a usage difficulty label as Novice=1, Intermediate=2, Expert=3.
func DifficultyOrdinal(label string) float64 {
	switch label {
	case DifficultyNovice:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyExpert:
		return 3
	default:
		return AvgDifficultyUnknown
	}
}

// Entity is one row of the fused dataset.
type Entity struct {
	Name string `json:"Name"`

	Offense   float64 `json:"Offense"`
	Endurance float64 `json:"Endurance"`
	Mobility  float64 `json:"Mobility"`
	Scoring   float64 `json:"Scoring"`
	Support   float64 `json:"Support"`

	Tier            string `json:"Tier"`
	Role            string `json:"Role"`
	AttackStyle     string `json:"AttackStyle"`
	PreferredLane   string `json:"PreferredLane"`
	Range           string `json:"Range"` // "Melee" or "Ranged"
	UsageDifficulty string `json:"UsageDifficulty"`

	WinRate   float64 `json:"WinRate"`
	UsageRate float64 `json:"UsageRate"`
	BanRate   float64 `json:"BanRate"`

	Win                    int     `json:"Win"`
	Loss                   int     `json:"Loss"`
	AdjustedWinRate        float64 `json:"AdjustedWinRate"`
	BlendedWinRate         float64 `json:"BlendedWinRate"`
	FeedbackBoostedWinRate float64 `json:"FeedbackBoostedWinRate"`

	MobilityXOffense   float64 `json:"Mobility_x_Offense"`
	MobilityXEndurance float64 `json:"Mobility_x_Endurance"`
	SupportXScoring    float64 `json:"Support_x_Scoring"`
	MetaImpactScore    float64 `json:"MetaImpactScore"`
	AvgDifficulty      float64 `json:"AvgDifficulty"`
}

// IsRanged reports whether the entity attacks from range.
func (e *Entity) IsRanged() bool {
	return e.Range == "Ranged"
}
