package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTablesMergesAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := `
country_aliases:
  "holland": "NETHERLANDS"
  "Burma ": "MYANMAR"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	n := New(tables)
	// New aliases resolve regardless of input case or padding.
	assert.Equal(t, "NETHERLANDS", n.Country("Holland"))
	assert.Equal(t, "MYANMAR", n.Country("burma"))
	// Built-in aliases survive the merge.
	assert.Equal(t, "SOUTH KOREA", n.Country("Korea, Republic of"))
	// Built-in sector rules survive an alias-only override.
	assert.Equal(t, SectorSteelAluminum, n.Sector("steel imports"))
}

func TestLoadTablesReplacesSectorRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := `
sector_rules:
  - keyword: "widget"
    sector: "General"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	require.Len(t, tables.SectorRules, 1)

	n := New(tables)
	assert.Equal(t, SectorGeneral, n.Sector("steel imports"))
}

func TestLoadTablesMissingFile(t *testing.T) {
	_, err := LoadTables(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadTablesMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("country_aliases: [not, a, map]"), 0o644))

	_, err := LoadTables(path)
	assert.Error(t, err)
}
