package main

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fantasyedge/truevalue/internal/backtest"
)

var flagGameweek int

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Compute and persist True Value predictions for one gameweek",
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

		runner, err := backtest.NewRunner(wrapStore(st), params, backtest.Opts{Persist: true})
		if err != nil {
			return err
		}

		predictions, err := runner.PredictGameweek(cmd.Context(), flagGameweek)
		if err != nil {
			return err
		}

		sort.Slice(predictions, func(i, j int) bool {
			return predictions[i].TrueValue > predictions[j].TrueValue
		})

		fmt.Printf("Gameweek %d: %d predictions (model %s)\n\n", flagGameweek, len(predictions), params.ModelVersion)
		fmt.Printf("%-12s %10s %10s %8s %8s %8s %8s\n", "PLAYER", "VALUE", "EFF", "FORM", "DIFF", "STATUS", "RATIO")
		for _, p := range predictions {
			fmt.Printf("%-12s %10.3f %10.3f %8.3f %8.3f %8.3f %8.3f\n",
				p.PlayerID, p.TrueValue, p.CostEfficiency,
				p.Multipliers.Form, p.Multipliers.Difficulty,
				p.Multipliers.Status, p.Multipliers.Ratio)
		}

		log.Info().Int("gameweek", flagGameweek).Int("predictions", len(predictions)).Msg("predictions persisted")
		return nil
	},
}

func init() {
	predictCmd.Flags().IntVar(&flagGameweek, "gameweek", 0, "target gameweek (required)")
	_ = predictCmd.MarkFlagRequired("gameweek")
}
