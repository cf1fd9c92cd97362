package aggregation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseInt разбирает целое в десятичной записи так же, как это делает
// источник данных: пробелы в начале пропускаются, берется знак и
// ведущие цифры, хвост отбрасывается ("480.5" -> 480, "12abc" -> 12).
// Если цифр нет, возвращает 0 и false.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseCredit приводит значение кредитов к числу. Пустое значение - это 0,
// нечисловое (в том числе "2,5" с запятой) - тоже 0, но с false.
func ParseCredit(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatDuration форматирует минуты как "HHhMM". Часы не ограничены сверху.
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02dh%02d", minutes/60, minutes%60)
}

// ParseDuration - обратная операция к FormatDuration
func ParseDuration(s string) int {
	hours, mins, found := strings.Cut(s, "h")
	if !found {
		return 0
	}

	h, _ := ParseInt(hours)
	m, _ := ParseInt(mins)
	return h*60 + m
}
