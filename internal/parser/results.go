package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoData: файл прочитан, но ни одного значения в узлах не нашлось.
var ErrNoData = errors.New("no node values found")

type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return d.Message
}

type NodeValue struct {
	Node  string
	Value float64
}

// ResultTable: разобранная таблица результатов. Values идут в порядке файла,
// повторный номер узла заменяет значение на месте первого вхождения.
type ResultTable struct {
	CalculationType string
	Unit            string
	Header          string
	Values          []NodeValue
	Diagnostics     []Diagnostic

	index map[string]int
}

func (t *ResultTable) set(node string, v float64) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[node]; ok {
		t.Values[i].Value = v
		return
	}
	t.index[node] = len(t.Values)
	t.Values = append(t.Values, NodeValue{Node: node, Value: v})
}

// Value: значение узла, если он есть в таблице.
func (t *ResultTable) Value(node string) (float64, bool) {
	i, ok := t.index[node]
	if !ok {
		return 0, false
	}
	return t.Values[i].Value, true
}

func (t *ResultTable) diag(line int, format string, args ...any) {
	t.Diagnostics = append(t.Diagnostics, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)})
}

// ParseResultFile читает текстовую (.txt, .csv, ...) или Excel (.xlsx) таблицу.
// Ошибка чтения возвращается как есть; пустая таблица возвращается вместе с ErrNoData.
func ParseResultFile(path string) (*ResultTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return parseResultXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ParseResultTable(f, filepath.Base(path))
}

// ParseResultTable разбирает таблицу "узел значение". Имя файла нужно только
// для определения вида расчёта. Испорченные строки не прерывают разбор:
// значение становится 0, а в Diagnostics появляется запись.
func ParseResultTable(r io.Reader, filename string) (*ResultTable, error) {
	lp := newLineParser(filename)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lp.feed(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return lp.finish()
}

func parseResultXLSX(path string) (*ResultTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	lp := newLineParser(filepath.Base(path))
	for _, row := range rows {
		lp.feed(strings.Join(row, "\t"))
	}
	return lp.finish()
}

type lineParser struct {
	table  *ResultTable
	header bool
	line   int
}

func newLineParser(filename string) *lineParser {
	return &lineParser{table: &ResultTable{CalculationType: DetectCalculationType(filename)}}
}

func (p *lineParser) feed(raw string) {
	p.line++
	if p.line == 1 {
		raw = strings.TrimPrefix(raw, "\ufeff")
	}
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return
	}

	if !p.header {
		p.header = true
		p.table.Header = line
		p.table.Unit = DetectUnit(line)
		return
	}

	fields := strings.Fields(strings.ReplaceAll(line, ",", "."))
	switch {
	case len(fields) >= 2:
		node := fields[0]
		val := strings.TrimSuffix(valueToken(fields), ".")
		if val == "0" || val == "" {
			p.table.set(node, 0)
			return
		}
		v, ok := ParseNumber(val)
		if !ok {
			p.table.diag(p.line, "node %s: cannot parse value %q, stored as 0", node, val)
		}
		p.table.set(node, v)
	case len(fields) == 1:
		p.table.set(fields[0], 0)
	}
}

func (p *lineParser) finish() (*ResultTable, error) {
	if len(p.table.Values) == 0 {
		return p.table, ErrNoData
	}
	return p.table, nil
}

var (
	expToken   = regexp.MustCompile(`^[eE][+-]?\d*$`)
	digitToken = regexp.MustCompile(`^[+-]?\d+$`)
)

// valueToken склеивает экспоненту, разорванную пробелом: "12.5e 3", "12.5 e3", "12.5 e -3".
func valueToken(fields []string) string {
	v, rest := fields[1], fields[2:]
	if len(rest) > 0 && expToken.MatchString(rest[0]) {
		v, rest = v+rest[0], rest[1:]
	}
	if len(rest) > 0 && strings.HasSuffix(strings.ToLower(v), "e") && digitToken.MatchString(rest[0]) {
		v += rest[0]
	}
	return v
}
