package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fantasyedge/truevalue/internal/backtest"
	"github.com/fantasyedge/truevalue/internal/bench"
)

var (
	flagFrom    int
	flagTo      int
	flagPersist bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay past gameweeks and score prediction accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runner, err := backtest.NewRunner(wrapStore(st), params, backtest.Opts{Persist: flagPersist})
		if err != nil {
			return err
		}

		results, err := runner.Run(cmd.Context(), flagFrom, flagTo)
		if err != nil {
			return err
		}

		metrics := bench.Compute(results.BenchPairs(), params.Metrics.TopK)
		printMetrics(results, metrics)
		return nil
	},
}

func printMetrics(results *backtest.Results, m bench.Result) {
	fmt.Printf("Backtest %s, gameweeks %d..%d\n\n", results.RunID, results.First, results.Last)

	fmt.Printf("%-10s %8s %10s %10s\n", "GAMEWEEK", "PAIRS", "SKIPPED", "INCLUDED")
	for _, p := range results.Periods {
		included := "yes"
		if p.Excluded {
			included = "no (below min sample)"
		}
		fmt.Printf("%-10d %8d %10d %10s\n", p.Gameweek, len(p.Pairs), p.Skipped, included)
	}
	fmt.Println()

	if m.Insufficient {
		fmt.Printf("Not enough paired observations (n=%d) for metrics.\n", m.N)
		return
	}
	fmt.Printf("n=%d\n", m.N)
	fmt.Printf("RMSE          %8.4f\n", m.RMSE)
	fmt.Printf("MAE           %8.4f\n", m.MAE)
	fmt.Printf("Spearman      %8.4f (p=%.4g)\n", m.Spearman, m.SpearmanP)
	fmt.Printf("R-squared     %8.4f\n", m.RSquared)
	fmt.Printf("Precision@%-3d %8.4f\n", m.K, m.PrecisionAtK)
}

func init() {
	backtestCmd.Flags().IntVar(&flagFrom, "from", 0, "first gameweek (required)")
	backtestCmd.Flags().IntVar(&flagTo, "to", 0, "last gameweek (required)")
	backtestCmd.Flags().BoolVar(&flagPersist, "persist", false, "persist per-gameweek predictions from the replay")
	_ = backtestCmd.MarkFlagRequired("from")
	_ = backtestCmd.MarkFlagRequired("to")
}
