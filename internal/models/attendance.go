package models

// AttendanceRecord - строка ABSENCES: одно отсутствие или опоздание студента.
// Смещения - минуты от начала дня.
type AttendanceRecord struct {
	StudentID        FlexString `json:"CODE_APPRENANT"`
	StudentLastName  string     `json:"NOM_APPRENANT"`
	StudentFirstName string     `json:"PRENOM_APPRENANT"`
	StartOffset      FlexString `json:"HEURE_DEBUT"`
	EndOffset        FlexString `json:"HEURE_FIN"`
	IsJustified      FlexString `json:"IS_JUSTIFIE"`
	IsLate           FlexString `json:"IS_RETARD"`
}

// AttendanceSummary - итог по студенту, длительности в формате "HHhMM"
type AttendanceSummary struct {
	StudentID           string `json:"CODE_APPRENANT"`
	StudentLastName     string `json:"NOM_APPRENANT"`
	StudentFirstName    string `json:"PRENOM_APPRENANT"`
	JustifiedDuration   string `json:"ABSENCES_JUSTIFIEES"`
	UnjustifiedDuration string `json:"ABSENCES_INJUSTIFIEES"`
	LateDuration        string `json:"RETARDS"`
}
