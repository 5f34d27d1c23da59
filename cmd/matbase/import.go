package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Spok95/matbase/internal/ingest"
	"github.com/Spok95/matbase/internal/parser"
	"github.com/Spok95/matbase/internal/store"
)

var (
	importModel string
	importClear bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import result tables or MatML materials",
}

var importResultsCmd = &cobra.Command{
	Use:   "results [file...]",
	Short: "Import node result tables (.txt, .csv, .xlsx) into a model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return withStore(cmd.Context(), func(s store.Store) error {
			imp := newImporter(s)

			var failed int
			for _, path := range args {
				rep, err := imp.ImportResultFile(cmd.Context(), path, importModel)
				switch {
				case errors.Is(err, parser.ErrNoData):
					failed++
					fmt.Fprintf(out, "%s: no node values found\n", path)
					continue
				case err != nil:
					return fmt.Errorf("%s: %w", path, err)
				}

				fmt.Fprintf(out, "%s: %s [%s], %d written, %d failed\n",
					path, rep.CalculationType, rep.Unit, rep.Written, rep.Failed)
				for _, d := range rep.Diagnostics {
					fmt.Fprintf(out, "  %s\n", d)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d file(s) had no data", failed)
			}
			return nil
		})
	},
}

var importMatMLCmd = &cobra.Command{
	Use:   "matml [dir | file...]",
	Short: "Import MatML materials from a directory or a list of files in one transaction",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		opts := ingest.BatchOptions{
			ClearFirst: importClear,
			OnProgress: func(cur, total int) { fmt.Fprintf(out, "[%d/%d]\n", cur, total) },
			OnLog:      func(msg string) { fmt.Fprintln(out, msg) },
		}

		return withStore(cmd.Context(), func(s store.Store) error {
			imp := newImporter(s)

			var (
				rep ingest.BatchReport
				err error
			)
			if fi, statErr := os.Stat(args[0]); statErr == nil && fi.IsDir() && len(args) == 1 {
				rep, err = imp.ImportMatMLDir(cmd.Context(), args[0], opts)
			} else {
				rep, err = imp.ImportMatMLBatch(cmd.Context(), args, opts)
			}
			if err != nil {
				return err
			}
			if rep.Cancelled {
				return fmt.Errorf("import cancelled after %d file(s), %d imported", rep.Processed, rep.Imported)
			}
			return nil
		})
	},
}

func newImporter(s store.Store) *ingest.Importer {
	return ingest.New(s,
		ingest.WithLogger(log),
		ingest.WithMetrics(met),
		ingest.WithExtensions(cfg.Import.MatMLExtensions),
	)
}

func init() {
	importResultsCmd.Flags().StringVarP(&importModel, "model", "m", "", "Model name")
	_ = importResultsCmd.MarkFlagRequired("model")
	importMatMLCmd.Flags().BoolVar(&importClear, "clear", false, "Remove all materials in the same transaction before import")

	importCmd.AddCommand(importResultsCmd, importMatMLCmd)
	rootCmd.AddCommand(importCmd)
}
