// Package features joins the macro sources onto the label panel and
// derives trailing rolling statistics. Every value attached to a row at
// month m is computed from source data dated at or before m; trailing
// windows never read past the row's own month.
package features

import (
	"math"
	"sort"
	"time"

	"tariffscope/internal/dataset"
	"tariffscope/internal/panel"
)

// Sources holds the loaded macro tables and the tariff event log.
type Sources struct {
	Trade         []dataset.TradeRow
	Forex         []dataset.FXRow
	GSCPI         []dataset.GSCPIRow
	Manufacturing []dataset.ManufacturingRow
	Unemployment  []dataset.UnemploymentRow
	Risk          []dataset.RiskRow
	Events        []dataset.TariffEvent
}

// Row is a labeled panel row with its feature vector. Values aligns with
// the Panel's Columns; missing observations are NaN until imputation.
type Row struct {
	Country      string
	Sector       string
	Month        time.Time
	Y            int
	SampleWeight float64
	Values       []float64
}

// Panel is the assembled feature table.
type Panel struct {
	Columns []string
	Rows    []Row
}

// Index returns the position of col in the schema, or -1.
func (p *Panel) Index(col string) int {
	for i, c := range p.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Positives counts y=1 rows.
func (p *Panel) Positives() int {
	n := 0
	for _, r := range p.Rows {
		if r.Y == 1 {
			n++
		}
	}
	return n
}

// Assembler builds feature panels.
type Assembler struct{}

// NewAssembler returns an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

const (
	rollingWindow   = 3
	sinceCapMonths  = 36.0
	daysPerMonthAvg = 30.44
)

// Assemble attaches the full feature vector to every panel row. Country
// series (trade, FX, manufacturing) join last-observation-carried-forward;
// the US-wide GSCPI and unemployment series broadcast by exact month;
// political risk defaults to 0 for months with no scored documents.
func (a *Assembler) Assemble(rows []panel.Row, src Sources) *Panel {
	cols := Columns()
	out := &Panel{Columns: cols}
	if len(rows) == 0 {
		return out
	}
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}

	tradeByCountry := buildTradeSeries(src.Trade)
	fxByCountry := buildForexSeries(src.Forex)
	manufByCountry := buildManufacturingSeries(src.Manufacturing)
	gscpi := buildGlobalSeries("gscpi", gscpiPoints(src.GSCPI))
	unrate := buildGlobalSeries("unrate", unemploymentPoints(src.Unemployment))
	months := panelMonths(rows)
	riskByCountry := buildRiskSeries(src.Risk, months)
	riskDefault := zeroRiskSeries(months)
	eventsByEntity := groupEventDates(src.Events)

	startMonth := rows[0].Month
	for _, r := range rows {
		if r.Month.Before(startMonth) {
			startMonth = r.Month
		}
	}

	out.Rows = make([]Row, 0, len(rows))
	for _, pr := range rows {
		values := make([]float64, len(cols))
		for i := range values {
			values[i] = math.NaN()
		}

		if s := tradeByCountry[pr.Country]; s != nil {
			s.copyLOCF(pr.Month, idx, values)
		}
		if s := fxByCountry[pr.Country]; s != nil {
			s.copyLOCF(pr.Month, idx, values)
		}
		if s := manufByCountry[pr.Country]; s != nil {
			s.copyLOCF(pr.Month, idx, values)
		}
		gscpi.copyExact(pr.Month, idx, values)
		unrate.copyExact(pr.Month, idx, values)
		if s := riskByCountry[pr.Country]; s != nil {
			s.copyExact(pr.Month, idx, values)
		} else {
			riskDefault.copyExact(pr.Month, idx, values)
		}

		values[idx[colMonthOfYear]] = float64(pr.Month.Month())
		values[idx[colMonthsSinceStart]] = float64(monthsBetween(startMonth, pr.Month))

		dates := eventsByEntity[entityKey(pr.Country, pr.Sector)]
		c3, c6, c12, since := eventHistory(dates, pr.Month)
		values[idx[colTariffCount3M]] = float64(c3)
		values[idx[colTariffCount6M]] = float64(c6)
		values[idx[colTariffCount12M]] = float64(c12)
		values[idx[colMonthsSinceTariff]] = since

		out.Rows = append(out.Rows, Row{
			Country:      pr.Country,
			Sector:       pr.Sector,
			Month:        pr.Month,
			Y:            pr.Y,
			SampleWeight: pr.SampleWeight,
			Values:       values,
		})
	}
	return out
}

// series is one entity's monthly observations with derived columns.
type series struct {
	months []time.Time
	cols   map[string][]float64
}

func newSeries(months []time.Time) *series {
	return &series{months: months, cols: make(map[string][]float64)}
}

// addStream derives the rolling block for one base column.
func (s *series) addStream(b baseColumn, values []float64) {
	s.cols[b.name] = values
	s.cols[b.stem+"_3m_mean"] = rollingMean(values, rollingWindow)
	s.cols[b.stem+"_3m_std"] = rollingStd(values, rollingWindow)
	s.cols[b.stem+"_3m_change"] = lagDiff(values, rollingWindow)
}

// copyLOCF writes the series values for the latest month at or before m.
func (s *series) copyLOCF(m time.Time, idx map[string]int, out []float64) {
	i := sort.Search(len(s.months), func(j int) bool { return s.months[j].After(m) }) - 1
	if i < 0 {
		return
	}
	for name, vals := range s.cols {
		out[idx[name]] = vals[i]
	}
}

// copyExact writes the series values for month m, if observed.
func (s *series) copyExact(m time.Time, idx map[string]int, out []float64) {
	i := sort.Search(len(s.months), func(j int) bool { return !s.months[j].Before(m) })
	if i >= len(s.months) || !s.months[i].Equal(m) {
		return
	}
	for name, vals := range s.cols {
		out[idx[name]] = vals[i]
	}
}

func baseByName(name string) baseColumn {
	for _, b := range baseColumns {
		if b.name == name {
			return b
		}
	}
	return baseColumn{name: name, stem: name}
}

func buildTradeSeries(rows []dataset.TradeRow) map[string]*series {
	type point struct {
		month            time.Time
		deficit, imp, ex float64
	}
	grouped := make(map[string][]point)
	for _, r := range rows {
		grouped[r.Country] = append(grouped[r.Country], point{r.Month, r.Deficit, r.Imports, r.Exports})
	}
	out := make(map[string]*series, len(grouped))
	for country, pts := range grouped {
		sort.Slice(pts, func(i, j int) bool { return pts[i].month.Before(pts[j].month) })
		months := make([]time.Time, len(pts))
		deficit := make([]float64, len(pts))
		imports := make([]float64, len(pts))
		exports := make([]float64, len(pts))
		for i, p := range pts {
			months[i] = p.month
			deficit[i] = p.deficit
			imports[i] = p.imp
			exports[i] = p.ex
		}
		s := newSeries(months)
		s.addStream(baseByName("trade_deficit"), deficit)
		s.addStream(baseByName("imports"), imports)
		s.addStream(baseByName("exports"), exports)
		out[country] = s
	}
	return out
}

func buildForexSeries(rows []dataset.FXRow) map[string]*series {
	type point struct {
		month time.Time
		rate  float64
	}
	grouped := make(map[string][]point)
	for _, r := range rows {
		grouped[r.Country] = append(grouped[r.Country], point{r.Month, r.Rate})
	}
	out := make(map[string]*series, len(grouped))
	for country, pts := range grouped {
		sort.Slice(pts, func(i, j int) bool { return pts[i].month.Before(pts[j].month) })
		months := make([]time.Time, len(pts))
		rates := make([]float64, len(pts))
		for i, p := range pts {
			months[i] = p.month
			rates[i] = p.rate
		}
		s := newSeries(months)
		s.addStream(baseByName("fx_usd"), rates)
		out[country] = s
	}
	return out
}

func buildManufacturingSeries(rows []dataset.ManufacturingRow) map[string]*series {
	grouped := make(map[string][]dataset.ManufacturingRow)
	for _, r := range rows {
		grouped[r.Country] = append(grouped[r.Country], r)
	}
	out := make(map[string]*series, len(grouped))
	for country, pts := range grouped {
		sort.Slice(pts, func(i, j int) bool { return pts[i].Month.Before(pts[j].Month) })
		months := make([]time.Time, len(pts))
		streams := map[string][]float64{
			"manuf_x_t":     make([]float64, len(pts)),
			"manuf_m_t":     make([]float64, len(pts)),
			"manuf_x_manuf": make([]float64, len(pts)),
			"manuf_m_manuf": make([]float64, len(pts)),
			"manuf_x_mht":   make([]float64, len(pts)),
			"manuf_m_mht":   make([]float64, len(pts)),
		}
		for i, p := range pts {
			months[i] = p.Month
			streams["manuf_x_t"][i] = p.ExportsTotal
			streams["manuf_m_t"][i] = p.ImportsTotal
			streams["manuf_x_manuf"][i] = p.ExportsManuf
			streams["manuf_m_manuf"][i] = p.ImportsManuf
			streams["manuf_x_mht"][i] = p.ExportsHighTech
			streams["manuf_m_mht"][i] = p.ImportsHighTech
		}
		s := newSeries(months)
		for name, vals := range streams {
			s.addStream(baseByName(name), vals)
		}
		out[country] = s
	}
	return out
}

type globalPoint struct {
	month time.Time
	value float64
}

func gscpiPoints(rows []dataset.GSCPIRow) []globalPoint {
	pts := make([]globalPoint, len(rows))
	for i, r := range rows {
		pts[i] = globalPoint{r.Month, r.Value}
	}
	return pts
}

func unemploymentPoints(rows []dataset.UnemploymentRow) []globalPoint {
	pts := make([]globalPoint, len(rows))
	for i, r := range rows {
		pts[i] = globalPoint{r.Month, r.Rate}
	}
	return pts
}

func buildGlobalSeries(name string, pts []globalPoint) *series {
	sort.Slice(pts, func(i, j int) bool { return pts[i].month.Before(pts[j].month) })
	months := make([]time.Time, len(pts))
	values := make([]float64, len(pts))
	for i, p := range pts {
		months[i] = p.month
		values[i] = p.value
	}
	s := newSeries(months)
	s.addStream(baseByName(name), values)
	return s
}

// buildRiskSeries fills each country's score across the panel months,
// defaulting absent months to 0, so the rolling block reflects the same
// filled sequence inference will see.
func buildRiskSeries(rows []dataset.RiskRow, months []time.Time) map[string]*series {
	if len(rows) == 0 || len(months) == 0 {
		return nil
	}
	scores := make(map[string]map[time.Time]float64)
	for _, r := range rows {
		if scores[r.Country] == nil {
			scores[r.Country] = make(map[time.Time]float64)
		}
		scores[r.Country][r.Month] = r.Score
	}
	out := make(map[string]*series, len(scores))
	for country, byMonth := range scores {
		values := make([]float64, len(months))
		for i, m := range months {
			values[i] = byMonth[m]
		}
		s := newSeries(months)
		s.addStream(baseByName("pol_risk_score"), values)
		out[country] = s
	}
	return out
}

// zeroRiskSeries is the all-zero filled sequence a country with no scored
// documents at all sees, so its rolling block matches a country whose
// scored months simply never overlap the panel.
func zeroRiskSeries(months []time.Time) *series {
	s := newSeries(months)
	s.addStream(baseByName("pol_risk_score"), make([]float64, len(months)))
	return s
}

// panelMonths returns the sorted unique months the panel covers.
func panelMonths(rows []panel.Row) []time.Time {
	seen := make(map[time.Time]struct{})
	var months []time.Time
	for _, r := range rows {
		if _, ok := seen[r.Month]; !ok {
			seen[r.Month] = struct{}{}
			months = append(months, r.Month)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}

func entityKey(country, sector string) string {
	return country + "\x00" + sector
}

func groupEventDates(events []dataset.TariffEvent) map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, ev := range events {
		k := entityKey(ev.Country, ev.Sector)
		out[k] = append(out[k], ev.Announced)
	}
	for _, dates := range out {
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}
	return out
}

// eventHistory counts past announcements in trailing windows ending at m
// and measures months since the most recent one. Only dates at or before
// m are visible; with no history the recency measure is capped.
func eventHistory(dates []time.Time, m time.Time) (c3, c6, c12 int, since float64) {
	cut := sort.Search(len(dates), func(i int) bool { return dates[i].After(m) })
	past := dates[:cut]
	if len(past) == 0 {
		return 0, 0, 0, sinceCapMonths
	}
	from3 := m.AddDate(0, 0, -91)
	from6 := m.AddDate(0, 0, -182)
	from12 := m.AddDate(0, 0, -365)
	for _, d := range past {
		if !d.Before(from3) {
			c3++
		}
		if !d.Before(from6) {
			c6++
		}
		if !d.Before(from12) {
			c12++
		}
	}
	days := m.Sub(past[len(past)-1]).Hours() / 24
	since = math.Round(days/daysPerMonthAvg*100) / 100
	return c3, c6, c12, since
}

func monthsBetween(start, m time.Time) int {
	return (m.Year()-start.Year())*12 + int(m.Month()) - int(start.Month())
}

// rollingMean is the trailing mean over up to the last window observations
// including the current one.
func rollingMean(v []float64, window int) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for j := lo; j <= i; j++ {
			sum += v[j]
		}
		out[i] = sum / float64(i-lo+1)
	}
	return out
}

// rollingStd is the trailing sample standard deviation over up to the last
// window observations; windows of one observation report 0.
func rollingStd(v []float64, window int) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := i - lo + 1
		if n < 2 {
			out[i] = 0
			continue
		}
		mean := 0.0
		for j := lo; j <= i; j++ {
			mean += v[j]
		}
		mean /= float64(n)
		ss := 0.0
		for j := lo; j <= i; j++ {
			d := v[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(n-1))
	}
	return out
}

// lagDiff is the difference against the observation lag steps earlier,
// NaN while insufficient history exists.
func lagDiff(v []float64, lag int) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		out[i] = v[i] - v[i-lag]
	}
	return out
}
