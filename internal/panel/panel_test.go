package panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariffscope/internal/dataset"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func findRow(t *testing.T, rows []Row, country, sector string, month time.Time) Row {
	t.Helper()
	for _, r := range rows {
		if r.Country == country && r.Sector == sector && r.Month.Equal(month) {
			return r
		}
	}
	t.Fatalf("no row for (%s, %s, %s)", country, sector, month.Format("2006-01"))
	return Row{}
}

func TestBuildLabelWindow(t *testing.T) {
	events := []dataset.TariffEvent{
		{Country: "USA", Sector: "Steel & Aluminum", Announced: day(2024, time.March, 15)},
	}

	b := NewBuilder()
	rows := b.Build(events, dataset.Month(2023, time.October), dataset.Month(2024, time.June))
	require.NotEmpty(t, rows)

	// 2024-01-01 + 90 days = 2024-03-31, which covers the March 15 event.
	jan := findRow(t, rows, "USA", "Steel & Aluminum", dataset.Month(2024, time.January))
	assert.Equal(t, 1, jan.Y)
	assert.Equal(t, 1.0, jan.SampleWeight)

	// 2023-10-01 + 90 days = 2023-12-30, well before the event.
	oct := findRow(t, rows, "USA", "Steel & Aluminum", dataset.Month(2023, time.October))
	assert.Equal(t, 0, oct.Y)

	// 2023-12-01 + 90 days = 2024-02-29 (leap year), just short of March 15.
	dec := findRow(t, rows, "USA", "Steel & Aluminum", dataset.Month(2023, time.December))
	assert.Equal(t, 0, dec.Y)
}

func TestBuildWindowBoundaries(t *testing.T) {
	// Event on the exact first day of a month: open lower bound means the
	// month itself is negative, the prior month positive.
	events := []dataset.TariffEvent{
		{Country: "CHINA", Sector: "Automotive", Announced: day(2024, time.May, 1)},
	}

	rows := NewBuilder().Build(events, dataset.Month(2024, time.January), dataset.Month(2024, time.June))

	may := findRow(t, rows, "CHINA", "Automotive", dataset.Month(2024, time.May))
	assert.Equal(t, 0, may.Y, "event at month start falls outside the open lower bound")

	apr := findRow(t, rows, "CHINA", "Automotive", dataset.Month(2024, time.April))
	assert.Equal(t, 1, apr.Y)

	// 2024-02-01 + 90 days = 2024-05-01: closed upper bound includes it.
	feb := findRow(t, rows, "CHINA", "Automotive", dataset.Month(2024, time.February))
	assert.Equal(t, 1, feb.Y)

	// 2024-01-01 + 90 days = 2024-03-31: event is past the window.
	jan := findRow(t, rows, "CHINA", "Automotive", dataset.Month(2024, time.January))
	assert.Equal(t, 0, jan.Y)
}

func TestBuildIgnoresEffectiveDate(t *testing.T) {
	// The in-effect date is months after announcement; only the announced
	// date may drive labels.
	events := []dataset.TariffEvent{
		{
			Country:   "MEXICO",
			Sector:    "General",
			Announced: day(2024, time.February, 10),
			Effective: day(2024, time.September, 1),
		},
	}

	rows := NewBuilder().Build(events, dataset.Month(2024, time.January), dataset.Month(2024, time.August))

	jun := findRow(t, rows, "MEXICO", "General", dataset.Month(2024, time.June))
	assert.Equal(t, 0, jun.Y, "effective date must not create a positive")

	jan := findRow(t, rows, "MEXICO", "General", dataset.Month(2024, time.January))
	assert.Equal(t, 1, jan.Y)
}

func TestBuildUniqueKeys(t *testing.T) {
	events := []dataset.TariffEvent{
		{Country: "USA", Sector: "Steel & Aluminum", Announced: day(2024, time.March, 15)},
		{Country: "USA", Sector: "Steel & Aluminum", Announced: day(2024, time.April, 2)},
		{Country: "CHINA", Sector: "General", Announced: day(2024, time.March, 20)},
	}

	rows := NewBuilder().Build(events, dataset.Month(2024, time.January), dataset.Month(2024, time.June))

	seen := make(map[string]bool)
	for _, r := range rows {
		key := r.Country + "|" + r.Sector + "|" + r.Month.Format("2006-01")
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
	// 2 entities x 6 months.
	assert.Len(t, rows, 12)
}

func TestBuildDerivesMonthRange(t *testing.T) {
	events := []dataset.TariffEvent{
		{Country: "USA", Sector: "General", Announced: day(2024, time.February, 5)},
		{Country: "USA", Sector: "General", Announced: day(2024, time.May, 20)},
	}

	rows := NewBuilder().Build(events, time.Time{}, time.Time{})
	require.NotEmpty(t, rows)

	assert.True(t, rows[0].Month.Equal(dataset.Month(2024, time.February)))
	assert.True(t, rows[len(rows)-1].Month.Equal(dataset.Month(2024, time.May)))
	assert.Len(t, rows, 4)
}

func TestBuildMassRolloutDownweighting(t *testing.T) {
	rollout := day(2024, time.April, 2)
	events := make([]dataset.TariffEvent, 0, 13)
	for i := 0; i < 12; i++ {
		events = append(events, dataset.TariffEvent{
			Country:   "C" + string(rune('A'+i)),
			Sector:    "General",
			Announced: rollout,
		})
	}
	// One entity also has an independent event in the same window.
	events = append(events, dataset.TariffEvent{
		Country:   "CA",
		Sector:    "General",
		Announced: day(2024, time.March, 10),
	})

	rows := NewBuilder().Build(events, dataset.Month(2024, time.February), dataset.Month(2024, time.May))

	// Positive only via the rollout: downweighted.
	cb := findRow(t, rows, "CB", "General", dataset.Month(2024, time.February))
	require.Equal(t, 1, cb.Y)
	assert.Equal(t, MassRolloutWeight, cb.SampleWeight)

	// Positive via an independent event too: full weight.
	ca := findRow(t, rows, "CA", "General", dataset.Month(2024, time.February))
	require.Equal(t, 1, ca.Y)
	assert.Equal(t, 1.0, ca.SampleWeight)

	// Negatives always carry full weight. By May the rollout date sits at
	// or before the month start, outside the open lower bound.
	may := findRow(t, rows, "CB", "General", dataset.Month(2024, time.May))
	require.Equal(t, 0, may.Y)
	assert.Equal(t, 1.0, may.SampleWeight)
}

func TestBuildEmptyEvents(t *testing.T) {
	rows := NewBuilder().Build(nil, time.Time{}, time.Time{})
	assert.Empty(t, rows)
}

func TestSummarize(t *testing.T) {
	events := []dataset.TariffEvent{
		{Country: "USA", Sector: "Steel & Aluminum", Announced: day(2024, time.March, 15)},
		{Country: "CHINA", Sector: "General", Announced: day(2024, time.March, 20)},
	}
	rows := NewBuilder().Build(events, dataset.Month(2024, time.January), dataset.Month(2024, time.June))

	s := Summarize(rows)
	assert.Equal(t, len(rows), s.Rows)
	assert.Equal(t, s.Rows, s.Positive+s.Negative)
	assert.Equal(t, 2, s.Entities)
	assert.Equal(t, 6, s.Months)
	assert.Greater(t, s.Positive, 0)
	assert.InDelta(t, float64(s.Positive)/float64(s.Rows), s.PositiveRate, 1e-12)
}
