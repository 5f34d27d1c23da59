// Package export выгружает результаты расчётов и свойства материалов в CSV и Excel.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/store"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// FormatFromPath выбирает формат по расширению файла.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want .csv or .xlsx)", filepath.Ext(path))
}

var resultHeader = []string{"Model", "Node Number", "Calculation Type", "Value"}

// SortResults упорядочивает по модели, номеру узла (числа по значению) и виду расчёта.
func SortResults(rs []results.Result) {
	slices.SortStableFunc(rs, func(a, b results.Result) int {
		if c := strings.Compare(a.Model, b.Model); c != 0 {
			return c
		}
		if c := CompareNodes(a.Node, b.Node); c != 0 {
			return c
		}
		return strings.Compare(a.CalculationType, b.CalculationType)
	})
}

// CompareNodes: числовые номера сравниваются как числа и идут раньше нечисловых.
func CompareNodes(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if fa != fb {
			if fa < fb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteResultsCSV(w io.Writer, rs []results.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for _, r := range rs {
		if err := cw.Write([]string{r.Model, r.Node, r.CalculationType, formatValue(r.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteResultsXLSX(w io.Writer, rs []results.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []any{resultHeader[0], resultHeader[1], resultHeader[2], resultHeader[3]}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for i, r := range rs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Model, r.Node, r.CalculationType, r.Value}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

// WritePropertiesCSV пишет свойства одного материала: "Property;Value;Unit".
func WritePropertiesCSV(w io.Writer, props []materials.Property) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"Property", "Value", "Unit"}); err != nil {
		return err
	}
	for _, p := range props {
		if err := cw.Write([]string{p.Name, formatValue(p.Value), p.Unit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WritePropertiesXLSX(w io.Writer, material string, props []materials.Property) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetCellValue(sheet, "A1", material); err != nil {
		return err
	}
	header := []any{"Property", "Value", "Unit"}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, p := range props {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		row := []any{p.Name, p.Value, p.Unit}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+3, err)
		}
	}
	return f.Write(w)
}

// Results выгружает результаты по фильтру в файл path; формат по расширению.
func Results(ctx context.Context, q store.Querier, f results.Filter, path string) (int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	rs, err := q.Results(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("load results: %w", err)
	}
	SortResults(rs)

	err = writeFile(path, func(w io.Writer) error {
		if format == XLSX {
			return WriteResultsXLSX(w, rs)
		}
		return WriteResultsCSV(w, rs)
	})
	if err != nil {
		return 0, err
	}
	return len(rs), nil
}

// Material выгружает свойства материала name. Если материала нет, store.ErrNotFound.
func Material(ctx context.Context, q store.Querier, name, path string) (int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	names, err := q.ListMaterials(ctx)
	if err != nil {
		return 0, fmt.Errorf("list materials: %w", err)
	}
	if !slices.Contains(names, name) {
		return 0, fmt.Errorf("material %q: %w", name, store.ErrNotFound)
	}
	props, err := q.Properties(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("load properties: %w", err)
	}

	err = writeFile(path, func(w io.Writer) error {
		if format == XLSX {
			return WritePropertiesXLSX(w, name, props)
		}
		return WritePropertiesCSV(w, props)
	})
	if err != nil {
		return 0, err
	}
	return len(props), nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}
