package models

// Строки, которые возвращает API школы. Имена колонок - как в базе школы.

type Student struct {
	StudentID FlexString `json:"CODE_APPRENANT"`
	LastName  FlexString `json:"NOM_APPRENANT"`
	FirstName FlexString `json:"PRENOM_APPRENANT"`
	BirthDate FlexString `json:"DATE_NAISSANCE,omitempty"`
}

// FullName возвращает "NOM Prénom"
func (s *Student) FullName() string {
	if s.FirstName == "" {
		return string(s.LastName)
	}
	return string(s.LastName) + " " + string(s.FirstName)
}

type SubjectAverage struct {
	StudentID   FlexString `json:"CODE_APPRENANT"`
	SubjectCode FlexString `json:"CODE_MATIERE"`
	SubjectName string     `json:"NOM_MATIERE"`
	Average     FlexString `json:"MOYENNE"`
}

type GeneralAverage struct {
	StudentID FlexString `json:"CODE_APPRENANT"`
	Average   FlexString `json:"MOYENNE_GENERALE"`
}

type Observation struct {
	StudentID FlexString `json:"CODE_APPRENANT"`
	Memo      string     `json:"MEMO_OBSERVATION"`
}

type GroupInfo struct {
	Code      FlexString `json:"CODE_GROUPE"`
	Name      string     `json:"NOM_GROUPE"`
	Extension string     `json:"ETENDU_GROUPE,omitempty"`
	Programme string     `json:"NOM_FORMATION,omitempty"`
}

type CampusInfo struct {
	Code FlexString `json:"CODE_SITE"`
	Name string     `json:"NOM_SITE"`
}

// Dataset - результаты именованных запросов одной группы
type Dataset struct {
	Groups          []GroupInfo        `json:"GROUPE"`
	Campuses        []CampusInfo       `json:"SITE"`
	Students        []Student          `json:"APPRENANT"`
	SubjectAverages []SubjectAverage   `json:"MOYENNES_UE"`
	GeneralAverages []GeneralAverage   `json:"MOYENNE_GENERALE"`
	Observations    []Observation      `json:"OBSERVATIONS"`
	Credits         []CurriculumItem   `json:"ECTS_PAR_MATIERE"`
	Absences        []AttendanceRecord `json:"ABSENCES"`
}

// IsEmpty - нет ни одного студента, бюллетени строить не из чего
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Students) == 0
}

// Group возвращает первую строку GROUPE, если она есть
func (d *Dataset) Group() *GroupInfo {
	if len(d.Groups) == 0 {
		return nil
	}
	return &d.Groups[0]
}

// Campus возвращает первую строку SITE, если она есть
func (d *Dataset) Campus() *CampusInfo {
	if len(d.Campuses) == 0 {
		return nil
	}
	return &d.Campuses[0]
}
