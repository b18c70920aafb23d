package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe signal-store connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("store unreachable: %w", err)
		}
		fmt.Println("store: ok")
		return nil
	},
}
