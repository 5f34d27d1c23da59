package parser

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// TypeRule: одно правило определения вида расчёта по имени файла.
// Правила проверяются сверху вниз, срабатывает первое подходящее.
type TypeRule struct {
	Name    string
	Match   func(lower string) bool
	Outcome func(lower string, tokens []string) string
}

func containsAll(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if !strings.Contains(s, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
}

func fixed(name string) func(string, []string) string {
	return func(string, []string) string { return name }
}

// directionalOutcome выбирает компоненту по отдельному токену x/y/z в имени файла.
func directionalOutcome(_ string, tokens []string) string {
	for _, axis := range []string{"x", "y", "z"} {
		for _, tok := range tokens {
			if tok == axis {
				return "Directional Deformation " + strings.ToUpper(axis)
			}
		}
	}
	return "Directional Deformation"
}

var CalculationTypeRules = []TypeRule{
	{Name: "normal stress", Match: containsAll("normal", "stress"), Outcome: fixed("Normal Stress")},
	{Name: "directional deformation", Match: containsAll("directional", "deformation"), Outcome: directionalOutcome},
	{Name: "shear stress", Match: containsAll("shear", "stress"), Outcome: fixed("Shear Stress")},
	{Name: "total deformation", Match: containsAll("total", "deformation"), Outcome: fixed("Total Deformation")},
	{Name: "stress", Match: containsAny("stress"), Outcome: fixed("Stress")},
	{Name: "deformation", Match: containsAny("deformation", "displacement"), Outcome: fixed("Deformation")},
	{Name: "strain", Match: containsAny("strain"), Outcome: fixed("Strain")},
	{Name: "force", Match: containsAny("force"), Outcome: fixed("Force")},
}

// DetectCalculationType определяет вид расчёта по имени файла. Если ни одно правило
// не подошло, видом расчёта становится имя файла без расширения, '_' и '-' заменяются пробелами.
func DetectCalculationType(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	lower := strings.ToLower(stem)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, rule := range CalculationTypeRules {
		if rule.Match(lower) {
			return rule.Outcome(lower, tokens)
		}
	}

	name := strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return strings.TrimSpace(name)
}

// UnitRule: ключевое слово заголовка и соответствующая единица.
type UnitRule struct {
	Keyword string
	Unit    string
}

// HeaderUnitRules идут от более специфичных к общим: "pascal" раньше "pa", "mm" раньше "m".
var HeaderUnitRules = []UnitRule{
	{Keyword: "pascal", Unit: "Pa"},
	{Keyword: "pa", Unit: "Pa"},
	{Keyword: "m/m", Unit: "m/m"},
	{Keyword: "mm", Unit: "mm"},
	{Keyword: "meter", Unit: "m"},
	{Keyword: "m", Unit: "m"},
	{Keyword: "newton", Unit: "N"},
	{Keyword: "n", Unit: "N"},
}

var parenUnit = regexp.MustCompile(`\(([^)]+)\)`)

// DetectUnit берёт единицу из первых скобок заголовка, иначе ищет ключевые слова.
func DetectUnit(header string) string {
	if m := parenUnit.FindStringSubmatch(header); m != nil {
		if u := strings.TrimSpace(m[1]); u != "" {
			return u
		}
	}
	lower := strings.ToLower(header)
	for _, rule := range HeaderUnitRules {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Unit
		}
	}
	return ""
}
