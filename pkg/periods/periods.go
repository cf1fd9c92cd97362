package periods

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PeriodJSON - строка PERIODE_EVALUATION в том виде, как ее отдает API
type PeriodJSON struct {
	Code      json.RawMessage `json:"CODE_PERIODE_EVALUATION"`
	Name      string          `json:"NOM_PERIODE_EVALUATION"`
	StartDate string          `json:"DATE_DEB"`
	EndDate   string          `json:"DATE_FIN"`
}

// Period - период оценивания (семестр, триместр)
type Period struct {
	Code  string    `json:"CODE_PERIODE_EVALUATION"`
	Name  string    `json:"NOM_PERIODE_EVALUATION"`
	Start time.Time `json:"DATE_DEB"`
	End   time.Time `json:"DATE_FIN"`
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
}

// ParseDate разбирает дату в одном из форматов API
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date format %q", s)
}

// Parse разбирает строки PERIODE_EVALUATION
func Parse(data []byte) ([]Period, error) {
	var rows []PeriodJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal periods: %w", err)
	}

	periods := make([]Period, 0, len(rows))
	for _, row := range rows {
		start, err := ParseDate(row.StartDate)
		if err != nil {
			return nil, fmt.Errorf("period %q: start date: %w", row.Name, err)
		}
		end, err := ParseDate(row.EndDate)
		if err != nil {
			return nil, fmt.Errorf("period %q: end date: %w", row.Name, err)
		}

		periods = append(periods, Period{
			Code:  rawCode(row.Code),
			Name:  row.Name,
			Start: start,
			End:   end,
		})
	}

	return periods, nil
}

// rawCode - код приходит и строкой, и числом
func rawCode(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// FilterWindow оставляет периоды, которые совпадают с учебным годом
// или целиком лежат внутри него
func FilterWindow(periods []Period, start, end time.Time) []Period {
	result := []Period{}
	for _, p := range periods {
		exact := p.Start.Equal(start) && p.End.Equal(end)
		inside := !p.Start.Before(start) && !p.End.After(end)
		if exact || inside {
			result = append(result, p)
		}
	}
	return result
}

// Find ищет период по коду
func Find(periods []Period, code string) (Period, bool) {
	for _, p := range periods {
		if p.Code == code {
			return p, true
		}
	}
	return Period{}, false
}
