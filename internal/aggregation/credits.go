package aggregation

import (
	"cmp"
	"math"
	"slices"

	"bulletins/internal/models"
)

// Rollup пересчитывает кредиты учебных блоков.
//
// Кредиты блока - сумма кредитов предметов, которые идут после него
// (в порядке NUM_ORDRE) до следующего блока того же студента. Блок попадает
// в результат в момент закрытия, то есть перед первым предметом следующего
// блока, а не на свою позицию сортировки. Повторы (студент, предмет)
// отбрасываются, остается первое вхождение.
func Rollup(items []models.CurriculumItem, report Reporter) []models.CurriculumItem {
	seen := make(map[string]struct{}, len(items))
	partitions := make(map[string][]models.CurriculumItem)
	var students []string

	for _, item := range items {
		key := item.StudentID + "_" + item.SubjectCode
		if _, dup := seen[key]; dup {
			report.report(Diagnostic{
				Kind:      DiagDuplicateItem,
				StudentID: item.StudentID,
				Field:     "CODE_MATIERE",
				Value:     item.SubjectCode,
			})
			continue
		}
		seen[key] = struct{}{}

		kept := item.Clone()
		kept.CreditValue = coerceCredit(&item, report)
		kept.RawCredit = ""

		if _, ok := partitions[item.StudentID]; !ok {
			students = append(students, item.StudentID)
		}
		partitions[item.StudentID] = append(partitions[item.StudentID], kept)
	}

	out := make([]models.CurriculumItem, 0, len(seen))
	for _, studentID := range students {
		out = rollupStudent(out, partitions[studentID], report)
	}

	return out
}

type orderedItem struct {
	order int
	item  models.CurriculumItem
}

// rollupStudent дописывает в out элементы одного студента за один проход
func rollupStudent(out []models.CurriculumItem, items []models.CurriculumItem, report Reporter) []models.CurriculumItem {
	ordered := make([]orderedItem, len(items))
	for i, item := range items {
		n, ok := ParseInt(item.OrderIndex)
		if !ok && item.OrderIndex != "" {
			report.report(Diagnostic{
				Kind:      DiagMalformedNumber,
				StudentID: item.StudentID,
				Field:     "NUM_ORDRE",
				Value:     item.OrderIndex,
			})
		}
		ordered[i] = orderedItem{order: n, item: item}
	}

	slices.SortStableFunc(ordered, func(a, b orderedItem) int {
		return cmp.Compare(a.order, b.order)
	})

	var (
		currentUnit *models.CurriculumItem
		accumulated float64
		children    int
	)

	closeUnit := func() {
		if currentUnit == nil {
			return
		}
		if children == 0 {
			report.report(Diagnostic{
				Kind:      DiagEmptyUnit,
				StudentID: currentUnit.StudentID,
				Field:     "CODE_MATIERE",
				Value:     currentUnit.SubjectCode,
			})
		}
		currentUnit.CreditValue = accumulated
		out = append(out, *currentUnit)
		currentUnit = nil
	}

	for _, o := range ordered {
		item := o.item

		switch item.ItemTypeCode {
		case models.ItemTypeUnit:
			closeUnit()
			unit := item.Clone()
			currentUnit = &unit
			accumulated = 0
			children = 0

		case models.ItemTypeSubject:
			out = append(out, item)
			if currentUnit == nil {
				report.report(Diagnostic{
					Kind:      DiagOrphanSubject,
					StudentID: item.StudentID,
					Field:     "CODE_MATIERE",
					Value:     item.SubjectCode,
				})
				continue
			}
			accumulated += item.CreditValue
			children++

		default:
			out = append(out, item)
		}
	}

	closeUnit()

	return out
}

// coerceCredit берет исходное значение CREDIT_ECTS, если оно есть,
// иначе уже заполненное CreditValue
func coerceCredit(item *models.CurriculumItem, report Reporter) float64 {
	if item.RawCredit == "" {
		if isFinite(item.CreditValue) {
			return item.CreditValue
		}
		return 0
	}

	v, ok := ParseCredit(item.RawCredit)
	if !ok {
		report.report(Diagnostic{
			Kind:      DiagMalformedNumber,
			StudentID: item.StudentID,
			Field:     "CREDIT_ECTS",
			Value:     item.RawCredit,
		})
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GroupByStudent раскладывает результат Rollup по студентам, сохраняя порядок
func GroupByStudent(items []models.CurriculumItem) map[string][]models.CurriculumItem {
	grouped := make(map[string][]models.CurriculumItem)
	for _, item := range items {
		grouped[item.StudentID] = append(grouped[item.StudentID], item)
	}
	return grouped
}
