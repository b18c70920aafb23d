package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for the prediction and validation pipeline. The core only
// increments; the surrounding service decides whether and where to expose
// the default registry.
var (
	PredictionsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truevalue",
		Name:      "predictions_computed_total",
		Help:      "Predictions produced by the engine.",
	})

	CapsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truevalue",
		Name:      "caps_triggered_total",
		Help:      "Multiplier and global cap clippings by cap name.",
	}, []string{"cap"})

	DataGaps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truevalue",
		Name:      "data_gaps_total",
		Help:      "Missing optional signals resolved to neutral defaults.",
	}, []string{"signal"})

	BacktestGameweeks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truevalue",
		Name:      "backtest_gameweeks_total",
		Help:      "Gameweeks replayed by the backtest runner.",
	})

	BacktestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "truevalue",
		Name:      "backtest_duration_seconds",
		Help:      "Wall time of complete backtest runs.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	OptimizerTrials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truevalue",
		Name:      "optimizer_trials_total",
		Help:      "Parameter-search trials evaluated.",
	})
)
