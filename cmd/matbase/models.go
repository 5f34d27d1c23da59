package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/export"
	"github.com/Spok95/matbase/internal/store"
)

var resultsType string

var modelsCmd = &cobra.Command{
	Use:     "models",
	Aliases: []string{"model"},
	Short:   "Browse models and their calculation results",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			names, err := s.ListModels(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		})
	},
}

var modelsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List calculation types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			types, err := s.ListCalculationTypes(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tUNIT")
			for _, ct := range types {
				fmt.Fprintf(tw, "%s\t%s\n", ct.Name, ct.Unit)
			}
			return tw.Flush()
		})
	},
}

var modelsResultsCmd = &cobra.Command{
	Use:   "results [model]",
	Short: "Print calculation results of a model (all models when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := results.Filter{CalculationType: resultsType}
		if len(args) == 1 {
			f.Model = args[0]
		}
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			rs, err := s.Results(ctx, f)
			if err != nil {
				return err
			}
			export.SortResults(rs)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tNODE\tTYPE\tVALUE")
			for _, r := range rs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%g\n", r.Model, r.Node, r.CalculationType, r.Value)
			}
			return tw.Flush()
		})
	},
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete [model]",
	Short: "Delete a model and all its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			err := s.DeleteModel(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("model %q not found", args[0])
			}
			if err != nil {
				return err
			}
			log.Info("model deleted", "model", args[0])
			return nil
		})
	},
}

func init() {
	modelsResultsCmd.Flags().StringVarP(&resultsType, "type", "t", "", "Calculation type filter")

	modelsCmd.AddCommand(modelsListCmd, modelsTypesCmd, modelsResultsCmd, modelsDeleteCmd)
	rootCmd.AddCommand(modelsCmd)
}
