// Package ingest записывает разобранные таблицы результатов и MatML-материалы в хранилище.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/infra/metrics"
	"github.com/Spok95/matbase/internal/parser"
	"github.com/Spok95/matbase/internal/store"
)

// ErrNoFiles: в каталоге нет ни одного MatML-файла.
var ErrNoFiles = errors.New("no MatML files found")

var DefaultExtensions = []string{".xml", ".matml"}

type Importer struct {
	store   store.Store
	log     *slog.Logger
	metrics *metrics.Metrics
	exts    []string
}

type Option func(*Importer)

func WithLogger(log *slog.Logger) Option {
	return func(i *Importer) {
		if log != nil {
			i.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) {
		if m != nil {
			i.metrics = m
		}
	}
}

// WithExtensions задаёт расширения файлов, которые ImportMatMLDir считает MatML.
func WithExtensions(exts []string) Option {
	return func(i *Importer) {
		if len(exts) > 0 {
			i.exts = exts
		}
	}
}

func New(s store.Store, opts ...Option) *Importer {
	i := &Importer{store: s, log: slog.Default(), exts: DefaultExtensions}
	for _, opt := range opts {
		opt(i)
	}
	if i.metrics == nil {
		i.metrics = metrics.New(prometheus.NewRegistry())
	}
	return i
}

/* Result tables */

type ResultReport struct {
	RunID           string
	File            string
	Model           string
	CalculationType string
	Unit            string
	Written         int
	Failed          int
	Diagnostics     []parser.Diagnostic
}

// ImportResultFile разбирает таблицу результатов и пишет её в модель model одной транзакцией.
// Неудачная запись строки откатывается отдельно и попадает в Failed и Diagnostics,
// остальные строки сохраняются. Пустая таблица возвращает parser.ErrNoData, в хранилище ничего не пишется.
func (i *Importer) ImportResultFile(ctx context.Context, path, model string) (ResultReport, error) {
	start := time.Now()
	defer i.metrics.ObserveSince(metrics.KindResults, start)

	rep := ResultReport{RunID: uuid.NewString(), File: filepath.Base(path), Model: strings.TrimSpace(model)}
	log := i.log.With("run_id", rep.RunID, "file", rep.File, "model", rep.Model)

	if rep.Model == "" {
		return rep, errors.New("model name is required")
	}

	table, err := parser.ParseResultFile(path)
	if table != nil {
		rep.CalculationType = table.CalculationType
		rep.Unit = table.Unit
		rep.Diagnostics = append(rep.Diagnostics, table.Diagnostics...)
		i.metrics.ParseDiagnostics.WithLabelValues(metrics.SourceTable).Add(float64(len(table.Diagnostics)))
	}
	if err != nil {
		log.Warn("result table rejected", "err", err)
		return rep, fmt.Errorf("parse %s: %w", rep.File, err)
	}
	if rep.CalculationType == "" {
		return rep, fmt.Errorf("parse %s: cannot determine calculation type from file name", rep.File)
	}
	for _, d := range table.Diagnostics {
		log.Debug("value defaulted to 0", "diag", d.String())
	}

	err = i.store.InTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateModel(ctx, rep.Model); err != nil {
			return fmt.Errorf("create model: %w", err)
		}
		if err := tx.EnsureCalculationType(ctx, rep.CalculationType, rep.Unit); err != nil {
			return fmt.Errorf("ensure calculation type: %w", err)
		}

		for _, nv := range table.Values {
			r := results.Result{Model: rep.Model, Node: nv.Node, CalculationType: rep.CalculationType, Value: nv.Value}
			err := tx.Savepoint(ctx, func(sp store.Tx) error {
				return sp.UpsertResult(ctx, r)
			})
			switch {
			case errors.Is(err, store.ErrTxAborted):
				return err
			case err != nil:
				rep.Failed++
				rep.Diagnostics = append(rep.Diagnostics, parser.Diagnostic{
					Message: fmt.Sprintf("node %s: write failed: %v", nv.Node, err),
				})
			default:
				rep.Written++
			}
		}
		return nil
	})
	if err != nil {
		log.Error("result import rolled back", "err", err)
		rep.Written, rep.Failed = 0, 0
		return rep, err
	}

	i.metrics.ResultRowsWritten.Add(float64(rep.Written))
	i.metrics.ResultRowsFailed.Add(float64(rep.Failed))
	log.Info("results imported",
		"calculation_type", rep.CalculationType,
		"unit", rep.Unit,
		"written", rep.Written,
		"failed", rep.Failed,
		"diagnostics", len(rep.Diagnostics),
	)
	return rep, nil
}

/* MatML */

// BatchOptions: ClearFirst удаляет все материалы в той же транзакции, что и импорт,
// поэтому откат пакета возвращает и их. Обратные вызовы необязательны.
type BatchOptions struct {
	ClearFirst bool
	OnProgress func(current, total int)
	OnLog      func(msg string)
}

func (o BatchOptions) progress(current, total int) {
	if o.OnProgress != nil {
		o.OnProgress(current, total)
	}
}

func (o BatchOptions) logf(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(fmt.Sprintf(format, args...))
	}
}

type Skip struct {
	File   string
	Reason string
}

type BatchReport struct {
	RunID     string
	Processed int
	Imported  int
	Skipped   int
	Cleared   int64
	Cancelled bool
	Skips     []Skip
}

// ImportMatMLDir импортирует все файлы каталога с MatML-расширениями (без учёта регистра).
func (i *Importer) ImportMatMLDir(ctx context.Context, dir string, opts BatchOptions) (BatchReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchReport{}, fmt.Errorf("read dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !i.matmlExt(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return BatchReport{}, fmt.Errorf("%s: %w", dir, ErrNoFiles)
	}
	return i.ImportMatMLBatch(ctx, files, opts)
}

func (i *Importer) matmlExt(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range i.exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ImportMatMLBatch пишет материалы всех файлов в одной транзакции.
//
// Файл, который не удалось прочитать, разобрать или записать, пропускается
// (его запись откатывается до точки сохранения), остальные остаются.
// Фатальная ошибка хранилища откатывает весь пакет: Imported == 0 и ошибка возвращается.
// Отмена ctx проверяется между файлами; уже обработанные файлы фиксируются,
// в отчёте выставляется Cancelled.
func (i *Importer) ImportMatMLBatch(ctx context.Context, files []string, opts BatchOptions) (BatchReport, error) {
	start := time.Now()
	defer i.metrics.ObserveSince(metrics.KindMatML, start)

	rep := BatchReport{RunID: uuid.NewString()}
	log := i.log.With("run_id", rep.RunID)
	total := len(files)

	log.Info("matml import started", "files", total)
	opts.logf("Importing %d MatML file(s)", total)

	// транзакция не должна откатываться от отмены ctx: отмена только останавливает цикл
	txCtx := context.WithoutCancel(ctx)

	err := i.store.InTx(txCtx, func(tx store.Tx) error {
		if opts.ClearFirst {
			n, err := tx.ClearAllMaterials(txCtx)
			if err != nil {
				return fmt.Errorf("clear materials: %w", err)
			}
			rep.Cleared = n
			log.Info("materials cleared", "count", n)
			opts.logf("Removed %d material(s)", n)
		}
		for n, path := range files {
			if ctx.Err() != nil {
				rep.Cancelled = true
				return nil
			}
			rep.Processed++
			name := filepath.Base(path)

			material, count, reason, err := i.importMatMLFile(txCtx, tx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if reason != "" {
				rep.Skipped++
				rep.Skips = append(rep.Skips, Skip{File: name, Reason: reason})
				log.Warn("matml file skipped", "file", name, "reason", reason)
				opts.logf("Skipped %s: %s", name, reason)
			} else {
				rep.Imported++
				log.Debug("material imported", "file", name, "material", material, "properties", count)
				opts.logf("Imported %s (%d properties) from %s", material, count, name)
			}
			opts.progress(n+1, total)
		}
		return nil
	})
	if err != nil {
		i.metrics.BatchRollbacks.Inc()
		log.Error("matml import rolled back", "err", err, "processed", rep.Processed)
		opts.logf("Import failed, nothing was saved: %v", err)
		rep.Imported, rep.Cleared = 0, 0
		return rep, err
	}

	i.metrics.MatMLFiles.WithLabelValues(metrics.OutcomeImported).Add(float64(rep.Imported))
	i.metrics.MatMLFiles.WithLabelValues(metrics.OutcomeSkipped).Add(float64(rep.Skipped))

	if rep.Cancelled {
		log.Info("matml import cancelled", "processed", rep.Processed, "imported", rep.Imported)
		opts.logf("Import cancelled after %d of %d file(s)", rep.Processed, total)
	}
	log.Info("matml import finished",
		"processed", rep.Processed,
		"imported", rep.Imported,
		"skipped", rep.Skipped,
	)
	opts.logf("Done: %d imported, %d skipped", rep.Imported, rep.Skipped)
	return rep, nil
}

// importMatMLFile возвращает непустой reason, если файл пропущен,
// и ошибку, только если продолжать транзакцию нельзя.
func (i *Importer) importMatMLFile(ctx context.Context, tx store.Tx, path string) (material string, count int, reason string, err error) {
	pm, perr := parseMatMLFile(path)
	if pm == nil {
		return "", 0, perr.Error(), nil
	}
	if perr != nil {
		i.metrics.ParseDiagnostics.WithLabelValues(metrics.SourceMatML).Inc()
		i.log.Warn("matml parse stopped early", "file", filepath.Base(path), "err", perr)
	}

	props := parser.Correlate(pm)
	if reason = parser.SkipReason(pm, props); reason != "" {
		if perr != nil {
			reason += " (" + perr.Error() + ")"
		}
		return pm.Name, 0, reason, nil
	}

	name := strings.TrimSpace(pm.Name)
	err = tx.Savepoint(ctx, func(sp store.Tx) error {
		if err := sp.CreateMaterial(ctx, name); err != nil {
			return fmt.Errorf("create material: %w", err)
		}
		for _, p := range props {
			err := sp.UpsertProperty(ctx, materials.Property{Material: name, Name: p.Name, Unit: p.Unit, Value: p.Value})
			if err != nil {
				return fmt.Errorf("property %q: %w", p.Name, err)
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrTxAborted):
		return name, 0, "", err
	case err != nil:
		return name, 0, err.Error(), nil
	}
	return name, len(props), "", nil
}

func parseMatMLFile(path string) (*parser.ParsedMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parser.ParseMatML(f)
}

// ClearAllMaterials удаляет все материалы; свойства уходят каскадом.
func (i *Importer) ClearAllMaterials(ctx context.Context) (int64, error) {
	n, err := i.store.ClearAllMaterials(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear materials: %w", err)
	}
	i.log.Info("materials cleared", "count", n)
	return n, nil
}
