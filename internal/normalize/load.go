package normalize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// LoadTables reads alias and sector tables from a YAML file. Sections
// omitted from the file keep their built-in defaults, so an override file
// can carry only the aliases it wants to add or change.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read tables file: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Tables{}, fmt.Errorf("parse tables file: %w", err)
	}

	// Alias lookups happen on uppercased input, so keys normalize here.
	for raw, canonical := range override.CountryAliases {
		tables.CountryAliases[strings.ToUpper(strings.TrimSpace(raw))] = canonical
	}
	if len(override.SectorRules) > 0 {
		tables.SectorRules = override.SectorRules
	}
	if len(override.Sectors) > 0 {
		tables.Sectors = override.Sectors
	}
	return tables, nil
}
