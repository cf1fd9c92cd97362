package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Типы элементов учебного плана (CODE_TYPE_MATIERE)
const (
	ItemTypeUnit    = "2" // учебный блок (UE), кредиты считаются по дочерним предметам
	ItemTypeSubject = "3" // предмет с собственными кредитами ECTS
)

const (
	colStudentID   = "CODE_APPRENANT"
	colSubjectCode = "CODE_MATIERE"
	colSubjectName = "NOM_MATIERE"
	colItemType    = "CODE_TYPE_MATIERE"
	colOrderIndex  = "NUM_ORDRE"
	colCredit      = "CREDIT_ECTS"
)

// CurriculumItem - строка ECTS_PAR_MATIERE.
//
// RawCredit хранит CREDIT_ECTS в том виде, в каком он пришел из API;
// CreditValue заполняется при свертке кредитов. Остальные колонки
// сохраняются в Extra и возвращаются при сериализации без изменений.
type CurriculumItem struct {
	StudentID    string
	SubjectCode  string
	SubjectName  string
	ItemTypeCode string
	OrderIndex   string
	CreditValue  float64
	RawCredit    string
	Extra        map[string]json.RawMessage
}

// IsUnit проверяет, является ли элемент учебным блоком
func (c *CurriculumItem) IsUnit() bool {
	return c.ItemTypeCode == ItemTypeUnit
}

// IsSubject проверяет, является ли элемент предметом
func (c *CurriculumItem) IsSubject() bool {
	return c.ItemTypeCode == ItemTypeSubject
}

// Clone возвращает копию без общих ссылок на Extra
func (c CurriculumItem) Clone() CurriculumItem {
	if c.Extra != nil {
		extra := make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			extra[k] = v
		}
		c.Extra = extra
	}
	return c
}

func (c *CurriculumItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := map[string]*string{
		colStudentID:   &c.StudentID,
		colSubjectCode: &c.SubjectCode,
		colSubjectName: &c.SubjectName,
		colItemType:    &c.ItemTypeCode,
		colOrderIndex:  &c.OrderIndex,
		colCredit:      &c.RawCredit,
	}

	for key, dst := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		var f FlexString
		if err := json.Unmarshal(value, &f); err != nil {
			return err
		}
		*dst = string(f)
		delete(raw, key)
	}

	c.CreditValue = 0
	c.Extra = nil
	if len(raw) > 0 {
		c.Extra = raw
	}

	return nil
}

func (c CurriculumItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+6)
	for k, v := range c.Extra {
		out[k] = v
	}

	out[colStudentID] = c.StudentID
	out[colSubjectCode] = c.SubjectCode
	out[colSubjectName] = c.SubjectName
	out[colItemType] = c.ItemTypeCode
	out[colOrderIndex] = c.OrderIndex

	// до свертки отдаем исходное значение, после - число
	if c.RawCredit != "" {
		if v, err := strconv.ParseFloat(c.RawCredit, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[colCredit] = v
		} else {
			out[colCredit] = c.RawCredit
		}
	} else {
		out[colCredit] = c.CreditValue
	}

	return json.Marshal(out)
}
