// Package panel builds the monthly label table: one row per observed
// (country, sector) pair and calendar month, with a binary outcome marking
// whether a qualifying tariff action is announced within the forward
// horizon after that month.
package panel

import (
	"sort"
	"time"

	"tariffscope/internal/dataset"
)

// HorizonDays is the forward label window. A row at month m is positive
// iff some matching event is announced in (m, m+HorizonDays]. This is a
// fixed policy constant, not data-derived.
const HorizonDays = 90

// Mass-rollout handling: when at least MassRolloutThreshold events share
// an announced date, they are one sweeping policy announcement rather than
// that many independent signals. Positives caused exclusively by such
// events are downweighted so a single rollout day cannot dominate training.
const (
	MassRolloutThreshold = 10
	MassRolloutWeight    = 0.05
)

// Row is one labeled (country, sector, month) observation.
type Row struct {
	Country      string
	Sector       string
	Month        time.Time
	Y            int
	SampleWeight float64
}

// Stats summarizes a built panel.
type Stats struct {
	Rows         int     `json:"rows"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	PositiveRate float64 `json:"positive_rate"`
	Downweighted int     `json:"downweighted"`
	Entities     int     `json:"entities"`
	Months       int     `json:"months"`
}

// Builder constructs label panels from tariff events.
type Builder struct {
	horizonDays   int
	massThreshold int
	massWeight    float64
}

// Option adjusts a Builder.
type Option func(*Builder)

// WithHorizonDays overrides the forward window, for tests.
func WithHorizonDays(days int) Option {
	return func(b *Builder) { b.horizonDays = days }
}

// WithMassRollout overrides the mass-rollout threshold and weight.
func WithMassRollout(threshold int, weight float64) Option {
	return func(b *Builder) {
		b.massThreshold = threshold
		b.massWeight = weight
	}
}

// NewBuilder returns a Builder with the policy defaults.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		horizonDays:   HorizonDays,
		massThreshold: MassRolloutThreshold,
		massWeight:    MassRolloutWeight,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build emits one Row per (country, sector, month) combination across the
// observed entity set and the month range. Entities come from the events;
// months cover the earliest through the latest event month inclusive
// unless start/end override them (zero values mean "derive from events").
// Labels use the announced date only; the in-effect date never enters a
// label window. A pair with no positive month anywhere still gets its full
// y=0 history: absence of risk is itself a labeled case.
func (b *Builder) Build(events []dataset.TariffEvent, start, end time.Time) []Row {
	if len(events) == 0 {
		return nil
	}

	type entity struct {
		country string
		sector  string
	}

	massDates := b.massRolloutDates(events)

	byEntity := make(map[entity][]dataset.TariffEvent)
	var entities []entity
	for _, ev := range events {
		e := entity{ev.Country, ev.Sector}
		if _, seen := byEntity[e]; !seen {
			entities = append(entities, e)
		}
		byEntity[e] = append(byEntity[e], ev)
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].country != entities[j].country {
			return entities[i].country < entities[j].country
		}
		return entities[i].sector < entities[j].sector
	})

	if start.IsZero() || end.IsZero() {
		lo, hi := eventMonthRange(events)
		if start.IsZero() {
			start = lo
		}
		if end.IsZero() {
			end = hi
		}
	}
	start = dataset.MonthKey(start)
	end = dataset.MonthKey(end)

	var rows []Row
	for _, e := range entities {
		evs := byEntity[e]
		for m := start; !m.After(end); m = dataset.AddMonths(m, 1) {
			windowEnd := m.AddDate(0, 0, b.horizonDays)
			y := 0
			onlyMass := true
			for _, ev := range evs {
				// Open-closed window (m, m+horizon].
				if ev.Announced.After(m) && !ev.Announced.After(windowEnd) {
					y = 1
					if !massDates[ev.Announced] {
						onlyMass = false
					}
				}
			}
			weight := 1.0
			if y == 1 && onlyMass {
				weight = b.massWeight
			}
			rows = append(rows, Row{
				Country:      e.country,
				Sector:       e.sector,
				Month:        m,
				Y:            y,
				SampleWeight: weight,
			})
		}
	}
	return rows
}

// massRolloutDates returns the announced dates shared by at least the
// threshold number of events.
func (b *Builder) massRolloutDates(events []dataset.TariffEvent) map[time.Time]bool {
	counts := make(map[time.Time]int)
	for _, ev := range events {
		counts[ev.Announced]++
	}
	dates := make(map[time.Time]bool)
	for d, c := range counts {
		if c >= b.massThreshold {
			dates[d] = true
		}
	}
	return dates
}

func eventMonthRange(events []dataset.TariffEvent) (time.Time, time.Time) {
	lo := dataset.MonthKey(events[0].Announced)
	hi := lo
	for _, ev := range events[1:] {
		m := dataset.MonthKey(ev.Announced)
		if m.Before(lo) {
			lo = m
		}
		if m.After(hi) {
			hi = m
		}
	}
	return lo, hi
}

// Summarize computes panel statistics.
func Summarize(rows []Row) Stats {
	s := Stats{Rows: len(rows)}
	entities := make(map[string]struct{})
	months := make(map[time.Time]struct{})
	for _, r := range rows {
		if r.Y == 1 {
			s.Positive++
			if r.SampleWeight < 1.0 {
				s.Downweighted++
			}
		}
		entities[r.Country+"\x00"+r.Sector] = struct{}{}
		months[r.Month] = struct{}{}
	}
	s.Negative = s.Rows - s.Positive
	if s.Rows > 0 {
		s.PositiveRate = float64(s.Positive) / float64(s.Rows)
	}
	s.Entities = len(entities)
	s.Months = len(months)
	return s
}
