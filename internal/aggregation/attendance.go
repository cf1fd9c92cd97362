// Package aggregation сворачивает строки из API школы в итоги для бюллетеней:
// часы отсутствий по студентам и кредиты ECTS по учебным блокам.
// Функции пакета чистые: без ввода-вывода и без общего состояния.
package aggregation

import "bulletins/internal/models"

const flagSet = "1"

type bucket int

const (
	bucketUnjustified bucket = iota
	bucketJustified
	bucketLate
)

// classify выбирает счетчик по флагам. Опоздание учитывается как опоздание
// независимо от уважительной причины.
func classify(isJustified, isLate models.FlexString) bucket {
	if isLate == flagSet {
		return bucketLate
	}
	if isJustified == flagSet {
		return bucketJustified
	}
	return bucketUnjustified
}

// Aggregate суммирует длительности отсутствий по студентам.
// Порядок результата - порядок первого появления студента во входных данных.
// Записи с длительностью <= 0 пропускаются, но студент все равно попадает в итог.
func Aggregate(records []models.AttendanceRecord, report Reporter) []models.AttendanceSummary {
	index := make(map[string]int)
	summaries := make([]models.AttendanceSummary, 0)
	totals := make([][3]int, 0)

	for _, rec := range records {
		studentID := string(rec.StudentID)

		i, ok := index[studentID]
		if !ok {
			i = len(summaries)
			index[studentID] = i
			summaries = append(summaries, models.AttendanceSummary{
				StudentID:        studentID,
				StudentLastName:  rec.StudentLastName,
				StudentFirstName: rec.StudentFirstName,
			})
			totals = append(totals, [3]int{})
		}

		start := parseOffset(studentID, "HEURE_DEBUT", rec.StartOffset, report)
		end := parseOffset(studentID, "HEURE_FIN", rec.EndOffset, report)

		duration := end - start
		if duration <= 0 {
			continue
		}

		totals[i][classify(rec.IsJustified, rec.IsLate)] += duration
	}

	for i := range summaries {
		summaries[i].UnjustifiedDuration = FormatDuration(totals[i][bucketUnjustified])
		summaries[i].JustifiedDuration = FormatDuration(totals[i][bucketJustified])
		summaries[i].LateDuration = FormatDuration(totals[i][bucketLate])
	}

	return summaries
}

func parseOffset(studentID, field string, value models.FlexString, report Reporter) int {
	n, ok := ParseInt(string(value))
	if !ok {
		report.report(Diagnostic{
			Kind:      DiagMalformedNumber,
			StudentID: studentID,
			Field:     field,
			Value:     string(value),
		})
	}
	return n
}
