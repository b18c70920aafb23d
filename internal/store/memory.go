package store

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// Memory is a full in-process Store. Backtests and optimizer trials load a
// season once and replay it from here; tests seed it directly. Reads and
// the append-only run log are safe under concurrent use.
type Memory struct {
	mu          sync.RWMutex
	players     map[string]domain.Player
	signals     map[int][]domain.GameweekSignal // keyed by gameweek
	baselines   map[string]domain.SeasonBaseline
	predictions map[string]domain.Prediction // keyed by player|gw|version
	runs        []domain.ValidationRun
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		players:     make(map[string]domain.Player),
		signals:     make(map[int][]domain.GameweekSignal),
		baselines:   make(map[string]domain.SeasonBaseline),
		predictions: make(map[string]domain.Prediction),
	}
}

// AddPlayer seeds or replaces a player.
func (m *Memory) AddPlayer(p domain.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p
}

// AddSignal seeds a fact row. Rows are immutable once written; callers add
// amendment rows for later gameweeks instead of editing.
func (m *Memory) AddSignal(s domain.GameweekSignal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[s.Gameweek] = append(m.signals[s.Gameweek], s)
}

// AddBaseline seeds a prior-season baseline.
func (m *Memory) AddBaseline(b domain.SeasonBaseline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselines[b.PlayerID] = b
}

func (m *Memory) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	players := make([]domain.Player, 0, len(m.players))
	for _, p := range m.players {
		if p.Active {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players, nil
}

func (m *Memory) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.players[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) SignalsBefore(ctx context.Context, gameweek int) ([]domain.GameweekSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.GameweekSignal
	gameweeks := make([]int, 0, len(m.signals))
	for gw := range m.signals {
		if gw < gameweek {
			gameweeks = append(gameweeks, gw)
		}
	}
	sort.Ints(gameweeks)
	for _, gw := range gameweeks {
		out = append(out, m.signals[gw]...)
	}
	return out, nil
}

func (m *Memory) SignalsAt(ctx context.Context, gameweek int) ([]domain.GameweekSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.signals[gameweek]
	out := make([]domain.GameweekSignal, len(rows))
	copy(out, rows)
	return out, nil
}

func (m *Memory) FixturesAt(ctx context.Context, gameweek int) ([]domain.FixtureContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.signals[gameweek]
	out := make([]domain.FixtureContext, 0, len(rows))
	for _, s := range rows {
		out = append(out, s.Fixture())
	}
	return out, nil
}

func (m *Memory) Baselines(ctx context.Context) (map[string]domain.SeasonBaseline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.SeasonBaseline, len(m.baselines))
	for id, b := range m.baselines {
		out[id] = b
	}
	return out, nil
}

func (m *Memory) UpsertPrediction(ctx context.Context, p domain.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[predictionKey(p.PlayerID, p.Gameweek, p.ModelVersion)] = p
	return nil
}

func (m *Memory) PredictionsAt(ctx context.Context, gameweek int, modelVersion string) ([]domain.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Prediction
	for _, p := range m.predictions {
		if p.Gameweek == gameweek && p.ModelVersion == modelVersion {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (m *Memory) AppendValidationRun(ctx context.Context, run domain.ValidationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *Memory) ValidationRuns(ctx context.Context, limit int) ([]domain.ValidationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.ValidationRun, n)
	copy(out, m.runs[len(m.runs)-n:])
	return out, nil
}

func predictionKey(playerID string, gameweek int, version string) string {
	return playerID + "|" + strconv.Itoa(gameweek) + "|" + version
}
