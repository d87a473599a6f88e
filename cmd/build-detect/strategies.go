package main

import (
	"github.com/spf13/cobra"

	"github.com/bonktools/build-detect/internal/strategy"
	"github.com/bonktools/build-detect/pkg/types"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available detection strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		configs := make([]types.StrategyConfig, 0)
		for _, name := range strategy.Names() {
			cfg, err := strategy.Resolve(name)
			if err != nil {
				return err
			}
			configs = append(configs, cfg)
		}
		return printJSON(configs)
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
