package sources

import (
	"github.com/unitematch/unitematch-api/internal/models"
)

// LoadBase reads the base attribute source. Missing required columns fail
// with a SchemaError naming every absent column.
func LoadBase(path string) (*models.BaseTable, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx, present := columnIndex(header)
	if missing := missingColumns(idx, models.RequiredBaseColumns); len(missing) > 0 {
		return nil, &models.SchemaError{Source: "base", Missing: missing}
	}

	col := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok {
			return ""
		}
		return cell(row, i)
	}

	table := &models.BaseTable{Columns: present, Rows: make([]models.BaseRecord, 0, len(rows))}
	for _, row := range rows {
		name := col(row, models.ColName)
		if name == "" {
			continue
		}
		table.Rows = append(table.Rows, models.BaseRecord{
			Name:            name,
			Offense:         parseNumber(col(row, models.ColOffense)),
			Endurance:       parseNumber(col(row, models.ColEndurance)),
			Mobility:        parseNumber(col(row, models.ColMobility)),
			Scoring:         parseNumber(col(row, models.ColScoring)),
			Support:         parseNumber(col(row, models.ColSupport)),
			AttackStyle:     col(row, models.ColAttackStyle),
			Description:     col(row, models.ColDescription),
			UsageDifficulty: canonicalDifficulty(col(row, models.ColUsageDifficulty)),
			Role:            col(row, models.ColRole),
			Range:           canonicalRange(col(row, models.ColRange)),
		})
	}
	return table, nil
}

// LoadMeta reads the meta statistics source. Rates are returned as written
// (percent or decimal); fusion decides the scale.
func LoadMeta(path string) (*models.MetaTable, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx, present := columnIndex(header)
	if missing := missingColumns(idx, models.RequiredMetaColumns); len(missing) > 0 {
		return nil, &models.SchemaError{Source: "meta", Missing: missing}
	}

	col := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok {
			return ""
		}
		return cell(row, i)
	}

	table := &models.MetaTable{Columns: present, Rows: make([]models.MetaRecord, 0, len(rows))}
	for _, row := range rows {
		name := col(row, models.ColName)
		if name == "" {
			continue
		}
		winRate, winPct := parsePercent(col(row, models.ColWinRate))
		usageRate, usagePct := parsePercent(col(row, models.ColUsageRate))
		banRate, banPct := parsePercent(col(row, models.ColBanRate))
		table.Rows = append(table.Rows, models.MetaRecord{
			Name:            name,
			WinRate:         winRate,
			UsageRate:       usageRate,
			BanRate:         banRate,
			Percent:         [3]bool{winPct, usagePct, banPct},
			Tier:            col(row, models.ColTier),
			Role:            col(row, models.ColRole),
			UsageDifficulty: canonicalDifficulty(col(row, models.ColUsageDifficulty)),
			PreferredLane:   col(row, models.ColPreferredLane),
			Range:           canonicalRange(col(row, models.ColRange)),
			Notes:           col(row, models.ColNotes),
		})
	}
	return table, nil
}
