package sources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/unitematch/unitematch-api/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBase(t *testing.T) {
	path := writeFile(t, "base.csv", "Name,Offense,Endurance,Mobility,Scoring,Support,Style,UsageDifficulty,Role,Description\n"+
		"pikachu,4.5,1.5,2.5,2.5,1.0,Ranged,novice,Attacker,Electric mouse\n"+
		"Snorlax,1.5,4.5,1.0,2.0,2.5,Melee,Novice,Defender,\n"+
		"Gengar,,2.0,4.0,3.0,,Melee,Expert,Speedster,Ghost\n"+
		",1,1,1,1,1,,,,\n")

	table, err := LoadBase(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3, "rows without a name are skipped")

	pika := table.Rows[0]
	assert.Equal(t, "pikachu", pika.Name, "names are normalized by fusion, not the loader")
	require.NotNil(t, pika.Offense)
	assert.Equal(t, 4.5, *pika.Offense)
	assert.Equal(t, "Novice", pika.UsageDifficulty)
	assert.Equal(t, "Ranged", pika.AttackStyle)

	gengar := table.Rows[2]
	assert.Nil(t, gengar.Offense)
	assert.Nil(t, gengar.Support)
	assert.True(t, table.HasColumn(models.ColAttackStyle))
}

func TestLoadBase_MissingColumns(t *testing.T) {
	path := writeFile(t, "base.csv", "Name,Offense,Endurance\npikachu,1,2\n")

	_, err := LoadBase(path)
	var schemaErr *models.SchemaError
	require.True(t, errors.As(err, &schemaErr), "got %v", err)
	assert.Equal(t, "base", schemaErr.Source)
	assert.Equal(t, []string{models.ColMobility, models.ColScoring, models.ColSupport}, schemaErr.Missing)
}

func TestLoadMeta_HeaderAliases(t *testing.T) {
	path := writeFile(t, "meta.csv", "Pokemon,Win Rate,Pick_Rate,Ban Rate (%),Tier,Role,Difficulty,Lane,Attack Type\n"+
		"Pikachu,51.2%,12.5,3.4,A,Attacker,Novice,Bottom,ranged\n"+
		"Snorlax,49.0,5,0.5,B,Defender,Novice,Top,melee\n")

	table, err := LoadMeta(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.True(t, table.HasColumn(models.ColPreferredLane))

	p := table.Rows[0]
	require.NotNil(t, p.WinRate)
	assert.Equal(t, 51.2, *p.WinRate)
	assert.Equal(t, 12.5, *p.UsageRate)
	assert.Equal(t, "Bottom", p.PreferredLane)
	assert.Equal(t, "Ranged", p.Range)
	assert.Equal(t, "Melee", table.Rows[1].Range)
}

func TestLoadMeta_MissingColumns(t *testing.T) {
	path := writeFile(t, "meta.csv", "Name,WinRate,Tier\nPikachu,50,A\n")

	_, err := LoadMeta(path)
	var schemaErr *models.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "meta", schemaErr.Source)
	assert.ElementsMatch(t, []string{models.ColUsageRate, models.ColBanRate, models.ColRole, models.ColUsageDifficulty}, schemaErr.Missing)
}

func TestLoadMeta_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Name", "WinRate", "UsageRate", "BanRate", "Tier", "Role", "UsageDifficulty"},
		{"Lucario", 52.5, 8.1, 1.2, "S", "All-Rounder", "Intermediate"},
		{"Blissey", 54, 10, 6.5, "S", "Supporter", "Novice"},
	}
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}
	path := filepath.Join(t.TempDir(), "meta.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := LoadMeta(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Lucario", table.Rows[0].Name)
	assert.Equal(t, 52.5, *table.Rows[0].WinRate)
	assert.Equal(t, "All-Rounder", table.Rows[0].Role)
	assert.False(t, table.HasColumn(models.ColPreferredLane))
}

func TestLoadMeta_UnsupportedExtension(t *testing.T) {
	_, err := LoadMeta(writeFile(t, "meta.json", "{}"))
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	assert.Nil(t, parseNumber(""))
	assert.Nil(t, parseNumber("n/a"))
	assert.Equal(t, 12.5, *parseNumber(" 12.5% "))
	assert.Equal(t, 0.3, *parseNumber("0.3"))
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		percent bool
	}{
		{"0.5%", 0.5, true},
		{" 52 % ", 52, true},
		{"0.52", 0.52, false},
	}
	for _, tt := range tests {
		v, pct := parsePercent(tt.in)
		require.NotNil(t, v, tt.in)
		assert.Equal(t, tt.want, *v, tt.in)
		assert.Equal(t, tt.percent, pct, tt.in)
	}

	v, pct := parsePercent("n/a%")
	assert.Nil(t, v)
	assert.False(t, pct)
}
