package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasyedge/truevalue/internal/domain"
)

func signal(id string, gw int, points float64, minutes int) domain.GameweekSignal {
	return domain.GameweekSignal{PlayerID: id, Gameweek: gw, Points: points, Minutes: minutes}
}

func TestBuildViews_SkipsUnplayedRows(t *testing.T) {
	history := []domain.GameweekSignal{
		signal("p1", 1, 6, 90),
		signal("p1", 2, 0, 0), // bench appearance, no signal
		signal("p1", 3, 10, 60),
	}

	views := buildViews(history, 6)
	view := views["p1"]
	require.NotNil(t, view)

	assert.Equal(t, 2, view.played)
	assert.Equal(t, 8.0, view.currentAvg())
	assert.Equal(t, []float64{10, 6}, view.recentPoints())
}

func TestBuildViews_WindowKeepsNewest(t *testing.T) {
	history := []domain.GameweekSignal{
		signal("p1", 1, 1, 90),
		signal("p1", 2, 2, 90),
		signal("p1", 3, 3, 90),
		signal("p1", 4, 4, 90),
	}

	views := buildViews(history, 2)
	view := views["p1"]
	require.NotNil(t, view)

	// The running average spans all played rows; only the form window
	// truncates.
	assert.Equal(t, 4, view.played)
	assert.Equal(t, 2.5, view.currentAvg())
	assert.Equal(t, []float64{4, 3}, view.recentPoints())
}

func TestRecentRate_AveragesOnlyPresentRows(t *testing.T) {
	rate := 0.6
	history := []domain.GameweekSignal{
		signal("p1", 1, 2, 90),
		{PlayerID: "p1", Gameweek: 2, Points: 5, Minutes: 90, AttackingRate: &rate},
	}

	views := buildViews(history, 6)
	got := views["p1"].recentRate()
	require.NotNil(t, got)
	assert.Equal(t, 0.6, *got)
}

func TestRecentRate_NilWhenNoData(t *testing.T) {
	views := buildViews([]domain.GameweekSignal{signal("p1", 1, 2, 90)}, 6)
	assert.Nil(t, views["p1"].recentRate())
}

func TestBuildViews_EmptyHistory(t *testing.T) {
	views := buildViews(nil, 6)
	assert.Empty(t, views)
}
