package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

type PropertyMeta struct {
	ID   string
	Name string
	Unit string
}

type PropertyValue struct {
	ID    string
	Value float64
}

// ParsedMaterial: промежуточный результат разбора одного MatML-файла.
// Meta и Values хранят порядок появления в документе: от него зависит
// поиск значения по имени свойства.
type ParsedMaterial struct {
	Name      string
	Meta      []PropertyMeta
	Values    []PropertyValue
	Isotropic bool

	metaIdx  map[string]int
	valueIdx map[string]int
}

func (m *ParsedMaterial) meta(id string) *PropertyMeta {
	if m.metaIdx == nil {
		m.metaIdx = make(map[string]int)
	}
	i, ok := m.metaIdx[id]
	if !ok {
		i = len(m.Meta)
		m.metaIdx[id] = i
		m.Meta = append(m.Meta, PropertyMeta{ID: id})
	}
	return &m.Meta[i]
}

// AddMeta регистрирует (или дополняет) описание свойства с данным id.
func (m *ParsedMaterial) AddMeta(id, name, unit string) {
	pm := m.meta(id)
	if name != "" {
		pm.Name = name
	}
	if unit != "" {
		pm.Unit = unit
	}
}

// SetValue записывает значение; повторный id перезаписывает прежнее.
func (m *ParsedMaterial) SetValue(id string, v float64) {
	if m.valueIdx == nil {
		m.valueIdx = make(map[string]int)
	}
	if i, ok := m.valueIdx[id]; ok {
		m.Values[i].Value = v
		return
	}
	m.valueIdx[id] = len(m.Values)
	m.Values = append(m.Values, PropertyValue{ID: id, Value: v})
}

func (m *ParsedMaterial) Value(id string) (float64, bool) {
	i, ok := m.valueIdx[id]
	if !ok {
		return 0, false
	}
	return m.Values[i].Value, true
}

// walkState хранит курсор обхода, текущее описание свойства и текущие данные свойства.
type walkState struct {
	stack []string

	metaID    string
	inDetails bool
	unitParts []unitPart
	unitPower string
	inUnit    bool

	propID string
}

type unitPart struct {
	name  string
	power string
}

func (s *walkState) parent() string {
	if len(s.stack) == 0 {
		return ""
	}
	return s.stack[len(s.stack)-1]
}

var plainDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseMatML обходит документ одним проходом. Материал возвращается всегда:
// при ошибке XML в нём то, что успели прочитать до места ошибки,
// а сама ошибка возвращается вторым значением.
func ParseMatML(r io.Reader) (*ParsedMaterial, error) {
	pm := &ParsedMaterial{}
	st := &walkState{}

	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return pm, nil
		}
		if err != nil {
			return pm, fmt.Errorf("matml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := st.start(d, t, pm); err != nil {
				return pm, fmt.Errorf("matml: %w", err)
			}
		case xml.EndElement:
			st.end(t, pm)
		}
	}
}

func (s *walkState) start(d *xml.Decoder, t xml.StartElement, pm *ParsedMaterial) error {
	switch t.Name.Local {
	case "Name":
		text, err := readText(d)
		if err != nil {
			return err
		}
		s.name(text, pm)
		return nil
	case "Data":
		text, err := readText(d)
		if err != nil {
			return err
		}
		s.data(text, pm)
		return nil
	case "PropertyDetails":
		s.inDetails = true
		s.metaID = attr(t, "id")
		s.unitParts = nil
		if s.metaID != "" {
			pm.meta(s.metaID)
		}
	case "Unit":
		if s.inDetails {
			s.inUnit = true
			s.unitPower = attr(t, "power")
		}
	case "PropertyData":
		s.propID = attr(t, "property")
	}
	s.stack = append(s.stack, t.Name.Local)
	return nil
}

func (s *walkState) end(t xml.EndElement, pm *ParsedMaterial) {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	switch t.Name.Local {
	case "PropertyDetails":
		s.inDetails = false
		s.metaID = ""
		s.unitParts = nil
	case "Unit":
		s.inUnit = false
		s.unitPower = ""
	case "PropertyData":
		s.propID = ""
	}
}

func (s *walkState) name(text string, pm *ParsedMaterial) {
	switch {
	case s.inDetails && s.inUnit:
		if s.metaID == "" || text == "" {
			return
		}
		s.unitParts = append(s.unitParts, unitPart{name: text, power: s.unitPower})
		pm.meta(s.metaID).Unit = composeUnit(s.unitParts)
	case s.inDetails:
		if s.metaID != "" && text != "" {
			pm.meta(s.metaID).Name = text
		}
	case pm.Name == "":
		// имя материала: Material > Name, Material > BulkDetails > Name или Name прямо под корнем
		switch p := s.parent(); {
		case p == "Material", p == "BulkDetails", len(s.stack) == 1:
			pm.Name = text
		}
	}
}

func (s *walkState) data(text string, pm *ParsedMaterial) {
	if strings.Contains(strings.ToLower(text), "isotropic") {
		pm.Isotropic = true
	}
	// Data внутри ParameterValue относится к параметру (температура и т.п.), не значение свойства
	if s.propID == "" || s.parent() != "PropertyData" {
		return
	}
	if !plainDecimal.MatchString(text) {
		return
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(v, 0) {
		return
	}
	pm.SetValue(s.propID, v)
}

// composeUnit: одна единица как есть, несколько (kg, m^-3) через "·".
func composeUnit(parts []unitPart) string {
	if len(parts) == 1 && (parts[0].power == "" || parts[0].power == "1") {
		return parts[0].name
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.power == "" || p.power == "1" {
			out = append(out, p.name)
			continue
		}
		out = append(out, p.name+"^"+p.power)
	}
	return strings.Join(out, "·")
}

// readText читает текст текущего элемента до его закрывающего тега;
// вложенные элементы пропускаются.
func readText(d *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := d.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return strings.TrimSpace(sb.String()), nil
		}
	}
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}
