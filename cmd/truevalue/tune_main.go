package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fantasyedge/truevalue/internal/tune"
)

var (
	flagTuneFrom   int
	flagTuneTo     int
	flagTuneTrials int
	flagTuneSeed   int64
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search parameter space for a lower-error configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			return err
		}
		if flagTuneTrials > 0 {
			params.Optimizer.MaxTrials = flagTuneTrials
		}
		if cmd.Flags().Changed("seed") {
			params.Optimizer.Seed = flagTuneSeed
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		optimizer, err := tune.NewOptimizer(wrapStore(st), params)
		if err != nil {
			return err
		}

		outcome, err := optimizer.Optimize(cmd.Context(), flagTuneFrom, flagTuneTo)
		if err != nil {
			return err
		}

		fmt.Printf("%d trials over gameweeks %d..%d\n\n", len(outcome.Trials), flagTuneFrom, flagTuneTo)
		fmt.Printf("%-6s %-18s %10s %10s\n", "TRIAL", "LABEL", "RMSE", "SPEARMAN")
		for _, t := range outcome.Trials {
			if t.Result.Insufficient {
				fmt.Printf("%-6d %-18s %10s %10s\n", t.Index, t.Label, "-", "-")
				continue
			}
			fmt.Printf("%-6d %-18s %10.4f %10.4f\n", t.Index, t.Label, t.Result.RMSE, t.Result.Spearman)
		}

		best := outcome.Trials[outcome.BestTrial]
		fmt.Printf("\nBest: trial %d (%s), RMSE %.4f\n", best.Index, best.Label, outcome.BestRMSE)
		tunables := outcome.BestParams.TunableMap()
		names := make([]string, 0, len(tunables))
		for name := range tunables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-22s %g\n", name, tunables[name])
		}
		return nil
	},
}

func init() {
	tuneCmd.Flags().IntVar(&flagTuneFrom, "from", 0, "first gameweek (required)")
	tuneCmd.Flags().IntVar(&flagTuneTo, "to", 0, "last gameweek (required)")
	tuneCmd.Flags().IntVar(&flagTuneTrials, "trials", 0, "trial budget override")
	tuneCmd.Flags().Int64Var(&flagTuneSeed, "seed", 0, "random seed override for reproducible searches")
	_ = tuneCmd.MarkFlagRequired("from")
	_ = tuneCmd.MarkFlagRequired("to")
}
