// Package normalize canonicalizes free-text country names and derives
// sector labels from free-text tariff target descriptions. It is the leaf
// dependency of every loader and of the inference boundary; both sides must
// use the same Normalizer instance (or one built from the same tables) so
// that training-time and inference-time keys agree.
package normalize

import (
	"regexp"
	"strings"
)

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// Normalizer resolves country aliases and sector keyword rules. It is
// immutable after construction and safe for concurrent use.
type Normalizer struct {
	tables    Tables
	sectorSet map[string]struct{}
}

// New builds a Normalizer from the given tables.
func New(tables Tables) *Normalizer {
	set := make(map[string]struct{}, len(tables.Sectors))
	for _, s := range tables.Sectors {
		set[s] = struct{}{}
	}
	return &Normalizer{tables: tables, sectorSet: set}
}

// NewDefault builds a Normalizer from the built-in tables.
func NewDefault() *Normalizer {
	return New(DefaultTables())
}

// Country returns the canonical uppercase country name for raw, resolving
// known aliases. Unknown inputs pass through cleaned but unchanged; the
// function never fails and is idempotent.
func (n *Normalizer) Country(raw string) string {
	clean := strings.ToUpper(strings.TrimSpace(raw))
	clean = strings.TrimSpace(parenthetical.ReplaceAllString(clean, ""))
	clean = strings.ReplaceAll(clean, "`", "'")
	if canonical, ok := n.tables.CountryAliases[clean]; ok {
		return canonical
	}
	return clean
}

// Sector infers the sector label from a tariff action's target description
// by scanning the ordered keyword rules; the first matching rule wins.
// Text matching no rule maps to SectorGeneral.
func (n *Normalizer) Sector(targetText string) string {
	t := strings.ToLower(targetText)
	for _, rule := range n.tables.SectorRules {
		if strings.Contains(t, rule.Keyword) {
			return rule.Sector
		}
	}
	return SectorGeneral
}

// CanonicalSector validates a caller-supplied sector value against the
// closed sector set. Unrecognized values are treated as SectorGeneral, for
// consistency with Sector's fallback policy.
func (n *Normalizer) CanonicalSector(sector string) string {
	s := strings.TrimSpace(sector)
	if _, ok := n.sectorSet[s]; ok {
		return s
	}
	// Tolerate case-only differences from API callers.
	for known := range n.sectorSet {
		if strings.EqualFold(known, s) {
			return known
		}
	}
	return SectorGeneral
}

// Sectors returns the closed sector set in its canonical order.
func (n *Normalizer) Sectors() []string {
	return append([]string(nil), n.tables.Sectors...)
}
