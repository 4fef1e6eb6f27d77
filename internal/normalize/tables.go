package normalize

// SectorRule maps a lowercase keyword to its sector label. Rules are
// evaluated in slice order and the first match wins; overlapping keywords
// ("steel" vs "aluminum" vs "automotive") make the order outcome-affecting,
// so it must be preserved exactly.
type SectorRule struct {
	Keyword string `yaml:"keyword"`
	Sector  string `yaml:"sector"`
}

// Tables holds the lookup data the Normalizer works from. A Normalizer
// owns an immutable copy; tests can substitute alternate tables without
// touching shared state.
type Tables struct {
	CountryAliases map[string]string `yaml:"country_aliases"`
	SectorRules    []SectorRule      `yaml:"sector_rules"`
	Sectors        []string          `yaml:"sectors"`
}

// Canonical sector labels. SectorGeneral is the fallback for target text
// matching no rule and for unrecognized sector values at the inference
// boundary.
const (
	SectorGeneral        = "General"
	SectorSteelAluminum  = "Steel & Aluminum"
	SectorAutomotive     = "Automotive"
	SectorSemiconductor  = "Semiconductor"
	SectorPharmaceutical = "Pharmaceutical"
	SectorEnergy         = "Energy"
	SectorLumber         = "Lumber"
	SectorMetals         = "Metals"
	SectorMinerals       = "Minerals"
	SectorMaritime       = "Maritime"
	SectorAerospace      = "Aerospace"
	SectorAgriculture    = "Agriculture"
	SectorTextiles       = "Textiles"
)

// DefaultTables returns the built-in alias and sector tables.
func DefaultTables() Tables {
	return Tables{
		CountryAliases: map[string]string{
			"COTE D'IVOIRE":                     "IVORY COAST",
			"COTE DIVOIRE":                      "IVORY COAST",
			"CÔTE D'IVOIRE":                     "IVORY COAST",
			"CÔTE D`IVOIRE":                     "IVORY COAST",
			"DEMOCRATIC REPUBLIC OF THE CONGO":  "CONGO DRC",
			"CONGO, DEMOCRATIC REPUBLIC OF THE": "CONGO DRC",
			"REPUBLIC OF KOREA":                 "SOUTH KOREA",
			"KOREA, REPUBLIC OF":                "SOUTH KOREA",
			"KOREA, SOUTH":                      "SOUTH KOREA",
			"KOREA":                             "SOUTH KOREA",
			"UNITED KINGDOM":                    "UK",
			"UNITED STATES":                     "USA",
			"UNITED STATES OF AMERICA":          "USA",
			"EUROPEAN UNION":                    "EU",
			"PEOPLE'S REPUBLIC OF CHINA":        "CHINA",
			"CHINA, MAINLAND":                   "CHINA",
			"CHINA, PEOPLES REPUBLIC":           "CHINA",
			"VIET NAM":                          "VIETNAM",
			"TURKIYE":                           "TURKEY",
			"TÜRKIYE":                           "TURKEY",
			"HONG KONG SAR":                     "HONG KONG",
			"HONG KONG, CHINA":                  "HONG KONG",
			"MACAO SAR":                         "MACAU",
			"MACAO, CHINA":                      "MACAU",
			"TAIWAN, PROVINCE OF CHINA":         "TAIWAN",
			"CHINESE TAIPEI":                    "TAIWAN",
			"RUSSIAN FEDERATION":                "RUSSIA",
			"IRAN, ISLAMIC REPUBLIC OF":         "IRAN",
			"IRAN (ISLAMIC REPUBLIC OF)":        "IRAN",
			"SYRIAN ARAB REPUBLIC":              "SYRIA",
			"LAO PEOPLE'S DEMOCRATIC REPUBLIC":  "LAOS",
			"KYRGYZ REPUBLIC":                   "KYRGYZSTAN",
			"CZECH REPUBLIC":                    "CZECHIA",
			"SLOVAK REPUBLIC":                   "SLOVAKIA",
			"MOLDOVA, REPUBLIC OF":              "MOLDOVA",
			"VENEZUELA, BOLIVARIAN REPUBLIC OF": "VENEZUELA",
			"TANZANIA, UNITED REPUBLIC OF":      "TANZANIA",
			"BOLIVIA, PLURINATIONAL STATE OF":   "BOLIVIA",
			"BRUNEI DARUSSALAM":                 "BRUNEI",
			"BURMA":                             "MYANMAR",
			"ESWATINI":                          "SWAZILAND",
			"TIMOR-LESTE":                       "EAST TIMOR",
			"BOSNIA AND HERZEGOVINA":            "BOSNIA",
			"FALKLAND ISLANDS (MALVINAS)":       "FALKLAND ISLANDS",
			"SAINT KITTS AND NEVIS":             "ST KITTS AND NEVIS",
			"SAINT LUCIA":                       "ST LUCIA",
			"SAINT VINCENT AND THE GRENADINES":  "ST VINCENT",
			"TRINIDAD AND TOBAGO":               "TRINIDAD",
			"ANTIGUA AND BARBUDA":               "ANTIGUA",
			"WORLD":                             "GLOBAL",
		},
		SectorRules: []SectorRule{
			{"steel", SectorSteelAluminum},
			{"aluminum", SectorSteelAluminum},
			{"aluminium", SectorSteelAluminum},
			{"automobile", SectorAutomotive},
			{"automotive", SectorAutomotive},
			{"vehicle", SectorAutomotive},
			{"truck", SectorAutomotive},
			{"car ", SectorAutomotive},
			{"semiconductor", SectorSemiconductor},
			{"pharmaceutical", SectorPharmaceutical},
			{"pharma", SectorPharmaceutical},
			{"drug", SectorPharmaceutical},
			{"medicine", SectorPharmaceutical},
			{"solar", SectorEnergy},
			{"polysilicon", SectorEnergy},
			{"oil", SectorEnergy},
			{"energy", SectorEnergy},
			{"lumber", SectorLumber},
			{"timber", SectorLumber},
			{"wood", SectorLumber},
			{"copper", SectorMetals},
			{"critical mineral", SectorMinerals},
			{"mineral", SectorMinerals},
			{"maritime", SectorMaritime},
			{"shipbuilding", SectorMaritime},
			{"ship", SectorMaritime},
			{"drone", SectorAerospace},
			{"aircraft", SectorAerospace},
			{"jet engine", SectorAerospace},
			{"potash", SectorAgriculture},
			{"agricultural", SectorAgriculture},
			{"agriculture", SectorAgriculture},
			{"soy", SectorAgriculture},
			{"grain", SectorAgriculture},
			{"textile", SectorTextiles},
			{"apparel", SectorTextiles},
			{"clothing", SectorTextiles},
			{"usmca", SectorGeneral},
			{"reciprocal", SectorGeneral},
			{"fentanyl", SectorGeneral},
			{"opioid", SectorGeneral},
			{"de minimis", SectorGeneral},
			{"low value", SectorGeneral},
		},
		Sectors: []string{
			SectorGeneral,
			SectorSteelAluminum,
			SectorAutomotive,
			SectorSemiconductor,
			SectorPharmaceutical,
			SectorEnergy,
			SectorLumber,
			SectorMetals,
			SectorMinerals,
			SectorMaritime,
			SectorAerospace,
			SectorAgriculture,
			SectorTextiles,
		},
	}
}
