package aggregation

// Виды диагностических сообщений
const (
	DiagMalformedNumber = "malformed_number"
	DiagOrphanSubject   = "orphan_subject"
	DiagEmptyUnit       = "empty_unit"
	DiagDuplicateItem   = "duplicate_item"
)

// Diagnostic описывает данные, которые были молча исправлены при агрегации
type Diagnostic struct {
	Kind      string
	StudentID string
	Field     string
	Value     string
}

// Reporter получает диагностику. nil допустим.
type Reporter func(Diagnostic)

func (r Reporter) report(d Diagnostic) {
	if r != nil {
		r(d)
	}
}

// Collect возвращает Reporter, складывающий диагностику в срез
func Collect(dst *[]Diagnostic) Reporter {
	return func(d Diagnostic) {
		*dst = append(*dst, d)
	}
}
