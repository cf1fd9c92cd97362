package render

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"bulletins/internal/models"
)

const notAvailable = "N/A"

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseAverage читает ведущее число, десятичная запятая допускается
func parseAverage(v models.FlexString) (float64, bool) {
	s := strings.Replace(strings.TrimSpace(string(v)), ",", ".", 1)
	m := leadingFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatAverage - два знака после точки или N/A
func FormatAverage(v models.FlexString) string {
	f, ok := parseAverage(v)
	if !ok {
		return notAvailable
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// FormatGeneralAverage - строка общей средней для бюллетеня
func FormatGeneralAverage(avg *models.GeneralAverage) string {
	if avg == nil {
		return "Moyenne générale: " + notAvailable
	}
	f, ok := parseAverage(avg.Average)
	if !ok {
		return "Moyenne générale: " + notAvailable
	}
	return "Moyenne générale: " + strconv.FormatFloat(f, 'f', 2, 64) + "/20"
}

// FormatCredit печатает кредиты без лишних нулей: 5, 2.5
func FormatCredit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SanitizeObservation заменяет пробелом \r и все, что вне печатного Latin-1
func SanitizeObservation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0x20 && r <= 0x7E, r >= 0xA0 && r <= 0xFF:
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// wrapWords разбивает текст по словам так, чтобы строка не превышала maxWidth
func wrapWords(text string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Split(text, " ") {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if width(candidate) > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if strings.TrimSpace(line) != "" {
		lines = append(lines, line)
	}
	return lines
}
