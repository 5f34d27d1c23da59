package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Spok95/matbase/internal/parser"
	"github.com/Spok95/matbase/internal/store"
)

var (
	listSearch         string
	listWithProperties bool
)

var materialsCmd = &cobra.Command{
	Use:     "materials",
	Aliases: []string{"material"},
	Short:   "Browse and edit materials",
}

var materialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List materials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		return withStore(ctx, func(s store.Store) error {
			if listWithProperties {
				all, err := s.AllMaterialsWithProperties(ctx)
				if err != nil {
					return err
				}
				for _, m := range all {
					fmt.Fprintf(out, "%s (%d)\n", m.Name, len(m.Properties))
					for _, p := range m.Properties {
						fmt.Fprintf(out, "  %s = %g %s\n", p.Name, p.Value, p.Unit)
					}
				}
				return nil
			}

			names, err := s.SearchMaterials(ctx, listSearch)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		})
	},
}

var materialsShowCmd = &cobra.Command{
	Use:   "show [material]",
	Short: "Show properties of a material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			names, err := s.ListMaterials(ctx)
			if err != nil {
				return err
			}
			if !slices.Contains(names, args[0]) {
				return fmt.Errorf("material %q: %w", args[0], store.ErrNotFound)
			}
			props, err := s.Properties(ctx, args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROPERTY\tVALUE\tUNIT")
			for _, p := range props {
				fmt.Fprintf(tw, "%s\t%g\t%s\n", p.Name, p.Value, p.Unit)
			}
			return tw.Flush()
		})
	},
}

var materialsSetPropertyCmd = &cobra.Command{
	Use:   "set-property [material] [property] [value]",
	Short: "Change the value of an existing property",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, ok := parser.ParseNumber(args[2])
		if !ok {
			return fmt.Errorf("invalid value %q", args[2])
		}
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			err := s.UpdateProperty(ctx, args[0], args[1], value)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("material %q has no property %q", args[0], args[1])
			}
			if err != nil {
				return err
			}
			log.Info("property updated", "material", args[0], "property", args[1], "value", value)
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s = %s\n", args[0], args[1], strconv.FormatFloat(value, 'g', -1, 64))
			return nil
		})
	},
}

var materialsDeletePropertyCmd = &cobra.Command{
	Use:   "delete-property [material] [property]",
	Short: "Delete a property of a material",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			err := s.DeleteProperty(ctx, args[0], args[1])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("material %q has no property %q", args[0], args[1])
			}
			if err != nil {
				return err
			}
			log.Info("property deleted", "material", args[0], "property", args[1])
			return nil
		})
	},
}

var materialsDeleteCmd = &cobra.Command{
	Use:   "delete [material]",
	Short: "Delete a material and all its properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			err := s.DeleteMaterial(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("material %q not found", args[0])
			}
			if err != nil {
				return err
			}
			log.Info("material deleted", "material", args[0])
			return nil
		})
	},
}

var materialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all materials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStore(ctx, func(s store.Store) error {
			n, err := newImporter(s).ClearAllMaterials(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d material(s)\n", n)
			return nil
		})
	},
}

func init() {
	materialsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive part of the name")
	materialsListCmd.Flags().BoolVarP(&listWithProperties, "with-properties", "p", false, "Print properties of every material")

	materialsCmd.AddCommand(
		materialsListCmd,
		materialsShowCmd,
		materialsSetPropertyCmd,
		materialsDeletePropertyCmd,
		materialsDeleteCmd,
		materialsClearCmd,
	)
	rootCmd.AddCommand(materialsCmd)
}
