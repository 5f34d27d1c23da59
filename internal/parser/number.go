package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// пробелы вокруг маркера экспоненты: "1,5 e-3", "2E 4"
var expMarker = regexp.MustCompile(`\s*[eE]\s*`)

var zeroSpellings = map[string]struct{}{
	"0": {}, "0.": {}, "0,": {}, "0.0": {}, "0,0": {},
}

// ParseNumber разбирает число в любой из встречающихся в выгрузках записей:
// десятичная запятая или точка, экспонента с пробелами, "", "." и "," как ноль.
// Функция всегда возвращает значение; ok == false означает, что строку разобрать
// не удалось и вместо неё подставлен 0. Бесконечность и NaN тоже считаются неразобранными.
func ParseNumber(raw string) (v float64, ok bool) {
	s := strings.TrimSpace(raw)
	s = expMarker.ReplaceAllString(s, "e")

	switch s {
	case "", ".", ",":
		return 0, true
	}
	if _, zero := zeroSpellings[s]; zero {
		return 0, true
	}

	if strings.Contains(s, "e") {
		if v, ok := parseScientific(s); ok {
			return v, true
		}
	}

	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// parseScientific: мантисса и целый показатель разбираются отдельно,
// итоговое значение собирается через ParseFloat, чтобы получить точное округление.
func parseScientific(s string) (float64, bool) {
	parts := strings.Split(s, "e")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, false
	}
	mantissa := strings.ReplaceAll(parts[0], ",", ".")
	if _, err := strconv.ParseFloat(mantissa, 64); err != nil {
		return 0, false
	}
	exp, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	// переполнение показателя: ParseFloat вернёт ±Inf и ошибку диапазона
	v, err := strconv.ParseFloat(mantissa+"e"+strconv.Itoa(exp), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
