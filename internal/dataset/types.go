package dataset

import "time"

// TradeRow is one country-month of bilateral trade with the US, in
// millions USD. Deficit is imports minus exports; positive means a US
// trade deficit with the country.
type TradeRow struct {
	Country string
	Month   time.Time
	Imports float64
	Exports float64
	Deficit float64
}

// FXRow is one country-month exchange rate: domestic currency per US
// dollar, monthly frequency only.
type FXRow struct {
	Country string
	Month   time.Time
	Rate    float64
}

// GSCPIRow is one month of the NY Fed Global Supply Chain Pressure Index.
// The series is US-wide (no country dimension); it is broadcast to all
// countries at feature-join time.
type GSCPIRow struct {
	Month time.Time
	Value float64
}

// ManufacturingRow is one country-month of manufacturing trade statistics,
// pivoted from the source's per-variable-code rows. Values are in USD.
type ManufacturingRow struct {
	Country         string
	Month           time.Time
	ExportsTotal    float64 // X_T
	ImportsTotal    float64 // M_T
	ExportsManuf    float64 // X_Manuf
	ImportsManuf    float64 // M_Manuf
	ExportsHighTech float64 // X_MHT
	ImportsHighTech float64 // M_MHT
}

// UnemploymentRow is one month of the US civilian unemployment rate
// (FRED UNRATE). Broadcast like GSCPI.
type UnemploymentRow struct {
	Month time.Time
	Rate  float64
}

// RiskRow is one entity-month political-risk score, aggregated by mean
// across the scraper's per-document rows for that month.
type RiskRow struct {
	Country string
	Month   time.Time
	Score   float64
}

// TariffEvent is one tracked tariff action, the source of truth for
// labels. Effective may be zero where the tracker records "TBD".
type TariffEvent struct {
	Country   string
	Sector    string
	Announced time.Time
	Effective time.Time
}
