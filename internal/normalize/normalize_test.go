package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountry(t *testing.T) {
	n := NewDefault()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"known alias", "Korea, Republic of", "SOUTH KOREA"},
		{"uppercase alias", "UNITED KINGDOM", "UK"},
		{"whitespace trimmed", "  Viet Nam  ", "VIETNAM"},
		{"parenthetical stripped", "Iran (Islamic Republic of)", "IRAN"},
		{"accented alias", "Côte d'Ivoire", "IVORY COAST"},
		{"accented alias with backtick", "Côte d`Ivoire", "IVORY COAST"},
		{"turkish alias", "Türkiye", "TURKEY"},
		{"unknown passes through", "Atlantis", "ATLANTIS"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Country(tt.input))
		})
	}
}

func TestCountryIdempotent(t *testing.T) {
	n := NewDefault()
	inputs := []string{"Korea, Republic of", "United States", "Atlantis", "Türkiye (Republic of)", "viet nam"}
	for _, input := range inputs {
		once := n.Country(input)
		assert.Equal(t, once, n.Country(once), "normalize(normalize(%q))", input)
	}
}

func TestSector(t *testing.T) {
	n := NewDefault()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"steel before aluminum by content", "Steel and aluminum imports", SectorSteelAluminum},
		{"automotive keyword", "Imported vehicles and parts", SectorAutomotive},
		{"first rule wins on overlap", "steel used in automobile frames", SectorSteelAluminum},
		{"case insensitive", "SEMICONDUCTOR wafers", SectorSemiconductor},
		{"no match falls back", "miscellaneous goods", SectorGeneral},
		{"empty text", "", SectorGeneral},
		{"textiles", "apparel and footwear", SectorTextiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Sector(tt.input))
		})
	}
}

func TestSectorDeterministic(t *testing.T) {
	n := NewDefault()
	// Same input must always yield the same sector across repeated calls.
	for i := 0; i < 10; i++ {
		assert.Equal(t, SectorSteelAluminum, n.Sector("steel, aluminum and copper"))
	}
}

func TestCanonicalSector(t *testing.T) {
	n := NewDefault()

	assert.Equal(t, SectorTextiles, n.CanonicalSector("Textiles"))
	assert.Equal(t, SectorSteelAluminum, n.CanonicalSector("steel & aluminum"))
	assert.Equal(t, SectorGeneral, n.CanonicalSector("Cryptocurrency"))
	assert.Equal(t, SectorGeneral, n.CanonicalSector(""))
}

func TestSubstituteTables(t *testing.T) {
	custom := Tables{
		CountryAliases: map[string]string{"OZ": "AUSTRALIA"},
		SectorRules:    []SectorRule{{"widget", "Widgets"}},
		Sectors:        []string{SectorGeneral, "Widgets"},
	}
	n := New(custom)

	require.Equal(t, "AUSTRALIA", n.Country("oz"))
	require.Equal(t, "Widgets", n.Sector("widget tariffs"))
	require.Equal(t, SectorGeneral, n.Sector("steel"))

	// The default instance is unaffected.
	assert.Equal(t, SectorSteelAluminum, NewDefault().Sector("steel"))
}
