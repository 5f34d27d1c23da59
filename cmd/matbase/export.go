package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/export"
	"github.com/Spok95/matbase/internal/store"
)

var (
	exportModel string
	exportType  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export results or material properties to CSV or XLSX",
}

var exportResultsCmd = &cobra.Command{
	Use:   "results [output.csv|output.xlsx]",
	Short: "Export calculation results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			n, err := export.Results(ctx, s, results.Filter{Model: exportModel, CalculationType: exportType}, args[0])
			if err != nil {
				return err
			}
			log.Info("results exported", "file", args[0], "rows", n)
			fmt.Fprintf(cmd.OutOrStdout(), "%d row(s) written to %s\n", n, args[0])
			return nil
		})
	},
}

var exportMaterialCmd = &cobra.Command{
	Use:   "material [material] [output.csv|output.xlsx]",
	Short: "Export properties of one material",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			n, err := export.Material(ctx, s, args[0], args[1])
			if err != nil {
				return err
			}
			log.Info("material exported", "material", args[0], "file", args[1], "properties", n)
			fmt.Fprintf(cmd.OutOrStdout(), "%d propert(ies) written to %s\n", n, args[1])
			return nil
		})
	},
}

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print material statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			all, err := s.AllMaterialsWithProperties(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), export.ComputeStats(all).Summary(statsLimit))
			return nil
		})
	},
}

func init() {
	exportResultsCmd.Flags().StringVarP(&exportModel, "model", "m", "", "Model filter")
	exportResultsCmd.Flags().StringVarP(&exportType, "type", "t", "", "Calculation type filter")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "Materials listed individually")

	exportCmd.AddCommand(exportResultsCmd, exportMaterialCmd)
	rootCmd.AddCommand(exportCmd, statsCmd)
}
