package models

// Canonical source column names. Header matching in the loaders maps
// aliases onto these.
const (
	ColName            = "Name"
	ColOffense         = "Offense"
	ColEndurance       = "Endurance"
	ColMobility        = "Mobility"
	ColScoring         = "Scoring"
	ColSupport         = "Support"
	ColAttackStyle     = "AttackStyle"
	ColDescription     = "Description"
	ColUsageDifficulty = "UsageDifficulty"
	ColRole            = "Role"
	ColRange           = "Range"
	ColWinRate         = "WinRate"
	ColUsageRate       = "UsageRate"
	ColBanRate         = "BanRate"
	ColTier            = "Tier"
	ColPreferredLane   = "PreferredLane"
	ColNotes           = "Notes"
)

// Required columns per static source.
var (
	RequiredBaseColumns = []string{ColName, ColOffense, ColEndurance, ColMobility, ColScoring, ColSupport}
	RequiredMetaColumns = []string{ColName, ColWinRate, ColUsageRate, ColBanRate, ColTier, ColRole, ColUsageDifficulty}
)

// BaseRecord is one row of the base attribute source. Nil numeric fields
// are missing cells.
type BaseRecord struct {
	Name      string
	Offense   *float64
	Endurance *float64
	Mobility  *float64
	Scoring   *float64
	Support   *float64

	AttackStyle string
	Description string

	// Superseded by the meta source; dropped before the merge.
	UsageDifficulty string
	Role            string
	Range           string
}

// BaseTable is an immutable snapshot of the base attribute source.
type BaseTable struct {
	Columns []string
	Rows    []BaseRecord
}

// MetaRecord is one row of the meta statistics source.
type MetaRecord struct {
	Name      string
	WinRate   *float64
	UsageRate *float64
	BanRate   *float64
	// Percent marks rate cells written with a trailing "%" (WinRate, UsageRate, BanRate).
	Percent [3]bool

	Tier            string
	Role            string
	UsageDifficulty string
	PreferredLane   string
	Range           string
	Notes           string
}

// MetaTable is an immutable snapshot of the meta statistics source.
type MetaTable struct {
	Columns []string
	Rows    []MetaRecord
}

// HasColumn reports whether the source carried the named canonical column.
func (t *MetaTable) HasColumn(name string) bool {
	return hasColumn(t.Columns, name)
}

// HasColumn reports whether the source carried the named canonical column.
func (t *BaseTable) HasColumn(name string) bool {
	return hasColumn(t.Columns, name)
}

func hasColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
