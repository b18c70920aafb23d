package backtest

import "github.com/fantasyedge/truevalue/internal/domain"

// playerView summarizes a player's strictly pre-gameweek history. Only
// played gameweeks (non-zero minutes) count toward the running average and
// the recent-form window: a bench appearance carries no scoring signal.
type playerView struct {
	played      int
	totalPoints float64
	// recent holds played rows oldest-to-newest; callers reverse.
	recent []domain.GameweekSignal
}

// buildViews folds history rows (ordered gameweek ascending) into per-player
// views, keeping at most window recent played rows per player.
func buildViews(history []domain.GameweekSignal, window int) map[string]*playerView {
	views := make(map[string]*playerView)
	for _, row := range history {
		if row.Minutes <= 0 {
			continue
		}
		view := views[row.PlayerID]
		if view == nil {
			view = &playerView{}
			views[row.PlayerID] = view
		}
		view.played++
		view.totalPoints += row.Points
		view.recent = append(view.recent, row)
		if len(view.recent) > window {
			view.recent = view.recent[1:]
		}
	}
	return views
}

func (v *playerView) currentAvg() float64 {
	if v.played == 0 {
		return 0
	}
	return v.totalPoints / float64(v.played)
}

// recentPoints returns the window newest first, the order the form model
// expects.
func (v *playerView) recentPoints() []float64 {
	out := make([]float64, len(v.recent))
	for i, row := range v.recent {
		out[len(out)-1-i] = row.Points
	}
	return out
}

// recentRate averages the underlying attacking rate over recent played rows
// that carry one; nil when the provider had no data in the window.
func (v *playerView) recentRate() *float64 {
	var sum float64
	var n int
	for _, row := range v.recent {
		if row.AttackingRate != nil {
			sum += *row.AttackingRate
			n++
		}
	}
	if n == 0 {
		return nil
	}
	rate := sum / float64(n)
	return &rate
}
