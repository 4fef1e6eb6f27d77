package features

// baseColumn pairs a base feature column with the stem used for its
// derived rolling-statistic columns. Most stems equal the base name; a
// couple are shortened so derived names stay readable.
type baseColumn struct {
	name string
	stem string
}

var baseColumns = []baseColumn{
	{"trade_deficit", "trade_deficit"},
	{"imports", "imports"},
	{"exports", "exports"},
	{"fx_usd", "fx"},
	{"gscpi", "gscpi"},
	{"unrate", "unrate"},
	{"pol_risk_score", "pol_risk"},
	{"manuf_x_t", "manuf_x_t"},
	{"manuf_m_t", "manuf_m_t"},
	{"manuf_x_manuf", "manuf_x_manuf"},
	{"manuf_m_manuf", "manuf_m_manuf"},
	{"manuf_x_mht", "manuf_x_mht"},
	{"manuf_m_mht", "manuf_m_mht"},
}

// Derived and history column names, appended after the per-base blocks.
const (
	colMonthOfYear       = "month_of_year"
	colMonthsSinceStart  = "months_since_start"
	colTariffCount3M     = "tariff_count_3m"
	colTariffCount6M     = "tariff_count_6m"
	colTariffCount12M    = "tariff_count_12m"
	colMonthsSinceTariff = "months_since_last_tariff"
)

// Columns returns the full ordered feature schema. The order is part of
// the trained-artifact contract: training and inference must produce the
// exact same list or the artifact is unusable.
func Columns() []string {
	cols := make([]string, 0, 4*len(baseColumns)+6)
	for _, b := range baseColumns {
		cols = append(cols,
			b.name,
			b.stem+"_3m_mean",
			b.stem+"_3m_std",
			b.stem+"_3m_change",
		)
	}
	cols = append(cols,
		colMonthOfYear,
		colMonthsSinceStart,
		colTariffCount3M,
		colTariffCount6M,
		colTariffCount12M,
		colMonthsSinceTariff,
	)
	return cols
}
