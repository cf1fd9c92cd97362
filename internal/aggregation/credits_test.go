package aggregation

import (
	"encoding/json"
	"testing"

	"bulletins/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(student, code, itemType, order, credit string) models.CurriculumItem {
	return models.CurriculumItem{
		StudentID:    student,
		SubjectCode:  code,
		SubjectName:  "Matiere " + code,
		ItemTypeCode: itemType,
		OrderIndex:   order,
		RawCredit:    credit,
	}
}

type credit struct {
	code  string
	value float64
}

func credits(items []models.CurriculumItem) []credit {
	out := make([]credit, 0, len(items))
	for _, it := range items {
		out = append(out, credit{it.SubjectCode, it.CreditValue})
	}
	return out
}

func TestRollup_UnitsSumFollowingSubjects(t *testing.T) {
	got := Rollup([]models.CurriculumItem{
		item("S1", "U1", models.ItemTypeUnit, "1", "30"),
		item("S1", "L1", models.ItemTypeSubject, "2", "3"),
		item("S1", "L2", models.ItemTypeSubject, "3", "2"),
		item("S1", "U2", models.ItemTypeUnit, "4", ""),
		item("S1", "L3", models.ItemTypeSubject, "5", "5"),
	}, nil)

	// блок выводится в момент закрытия
	assert.Equal(t, []credit{
		{"L1", 3},
		{"L2", 2},
		{"U1", 5},
		{"L3", 5},
		{"U2", 5},
	}, credits(got))
}

func TestRollup_OutOfOrderInputMatchesSorted(t *testing.T) {
	sorted := []models.CurriculumItem{
		item("S1", "U1", models.ItemTypeUnit, "1", ""),
		item("S1", "L1", models.ItemTypeSubject, "2", "3"),
		item("S1", "L2", models.ItemTypeSubject, "3", "2"),
		item("S1", "U2", models.ItemTypeUnit, "4", ""),
		item("S1", "L3", models.ItemTypeSubject, "5", "5"),
	}
	shuffled := []models.CurriculumItem{sorted[4], sorted[1], sorted[3], sorted[0], sorted[2]}

	assert.Equal(t, credits(Rollup(sorted, nil)), credits(Rollup(shuffled, nil)))
}

func TestRollup_StableOnEqualOrder(t *testing.T) {
	got := Rollup([]models.CurriculumItem{
		item("S1", "U1", models.ItemTypeUnit, "1", ""),
		item("S1", "B", models.ItemTypeSubject, "2", "1"),
		item("S1", "A", models.ItemTypeSubject, "2", "1"),
	}, nil)

	assert.Equal(t, []credit{{"B", 1}, {"A", 1}, {"U1", 2}}, credits(got))
}

func TestRollup_DeduplicatesFirstWins(t *testing.T) {
	var diags []Diagnostic
	got := Rollup([]models.CurriculumItem{
		item("S1", "U1", models.ItemTypeUnit, "1", ""),
		item("S1", "L1", models.ItemTypeSubject, "2", "4"),
		item("S1", "L1", models.ItemTypeSubject, "2", "10"),
	}, Collect(&diags))

	assert.Equal(t, []credit{{"L1", 4}, {"U1", 4}}, credits(got))
	require.Len(t, diags, 1)
	assert.Equal(t, DiagDuplicateItem, diags[0].Kind)
}

func TestRollup_EmptyUnitAndOrphans(t *testing.T) {
	var diags []Diagnostic
	got := Rollup([]models.CurriculumItem{
		item("S1", "L0", models.ItemTypeSubject, "1", "6"),
		item("S1", "U1", models.ItemTypeUnit, "2", "12"),
		item("S1", "U2", models.ItemTypeUnit, "3", ""),
		item("S1", "L1", models.ItemTypeSubject, "4", "2"),
	}, Collect(&diags))

	assert.Equal(t, []credit{{"L0", 6}, {"U1", 0}, {"L1", 2}, {"U2", 2}}, credits(got))

	kinds := make([]string, 0, len(diags))
	for _, d := range diags {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []string{DiagOrphanSubject, DiagEmptyUnit}, kinds)
}

func TestRollup_PassthroughItemsUntouched(t *testing.T) {
	got := Rollup([]models.CurriculumItem{
		item("S1", "U1", models.ItemTypeUnit, "1", ""),
		item("S1", "X", "9", "2", "7"),
		item("S1", "L1", models.ItemTypeSubject, "3", "1"),
	}, nil)

	assert.Equal(t, []credit{{"X", 7}, {"L1", 1}, {"U1", 1}}, credits(got))
}

func TestRollup_MalformedValuesCoercedToZero(t *testing.T) {
	var diags []Diagnostic
	got := Rollup([]models.CurriculumItem{
		item("S1", "L1", models.ItemTypeSubject, "x", "2,5"),
		item("S1", "U1", models.ItemTypeUnit, "-1", ""),
		item("S1", "L2", models.ItemTypeSubject, "5", "1.5"),
	}, Collect(&diags))

	// "x" сортируется как 0, поэтому U1 (-1) идет первым
	assert.Equal(t, []credit{{"L1", 0}, {"L2", 1.5}, {"U1", 1.5}}, credits(got))
	assert.Len(t, diags, 2)
}

func TestRollup_StudentsKeepFirstAppearanceOrder(t *testing.T) {
	got := Rollup([]models.CurriculumItem{
		item("S2", "U1", models.ItemTypeUnit, "1", ""),
		item("S1", "U1", models.ItemTypeUnit, "1", ""),
		item("S2", "L1", models.ItemTypeSubject, "2", "3"),
		item("S1", "L1", models.ItemTypeSubject, "2", "1"),
	}, nil)

	require.Len(t, got, 4)
	assert.Equal(t, "S2", got[0].StudentID)
	assert.Equal(t, "S2", got[1].StudentID)
	assert.Equal(t, 3.0, got[1].CreditValue)
	assert.Equal(t, "S1", got[3].StudentID)
	assert.Equal(t, 1.0, got[3].CreditValue)
}

func TestRollup_DoesNotMutateInput(t *testing.T) {
	in := []models.CurriculumItem{
		item("S1", "U1", models.ItemTypeUnit, "1", "99"),
		item("S1", "L1", models.ItemTypeSubject, "2", "3"),
	}
	in[0].Extra = map[string]json.RawMessage{"NOM_UE": json.RawMessage(`"Bloc 1"`)}

	got := Rollup(in, nil)
	got[1].Extra["NOM_UE"] = json.RawMessage(`"changed"`)

	assert.Equal(t, "99", in[0].RawCredit)
	assert.Equal(t, json.RawMessage(`"Bloc 1"`), in[0].Extra["NOM_UE"])
}

func TestRollup_SumLaw(t *testing.T) {
	in := []models.CurriculumItem{
		item("S1", "U1", models.ItemTypeUnit, "10", ""),
		item("S1", "L1", models.ItemTypeSubject, "11", "1"),
		item("S1", "L2", models.ItemTypeSubject, "12", "2.5"),
		item("S1", "U2", models.ItemTypeUnit, "20", ""),
		item("S1", "L3", models.ItemTypeSubject, "21", "4"),
		item("S1", "U3", models.ItemTypeUnit, "30", ""),
	}

	got := Rollup(in, nil)

	var pending float64
	for _, it := range got {
		switch it.ItemTypeCode {
		case models.ItemTypeSubject:
			pending += it.CreditValue
		case models.ItemTypeUnit:
			assert.Equal(t, pending, it.CreditValue, it.SubjectCode)
			pending = 0
		}
	}
}

func TestRollup_FromJSON(t *testing.T) {
	payload := `[
		{"CODE_APPRENANT": 42, "CODE_MATIERE": "UE1", "CODE_TYPE_MATIERE": "2", "NUM_ORDRE": 1, "CREDIT_ECTS": null, "NOM_UE": "Droit"},
		{"CODE_APPRENANT": 42, "CODE_MATIERE": "M1", "CODE_TYPE_MATIERE": 3, "NUM_ORDRE": "2", "CREDIT_ECTS": "3"},
		{"CODE_APPRENANT": 42, "CODE_MATIERE": "M2", "CODE_TYPE_MATIERE": "3", "NUM_ORDRE": 3, "CREDIT_ECTS": 2.5}
	]`

	var items []models.CurriculumItem
	require.NoError(t, json.Unmarshal([]byte(payload), &items))

	got := Rollup(items, nil)
	require.Len(t, got, 3)
	assert.Equal(t, "42", got[2].StudentID)
	assert.Equal(t, 5.5, got[2].CreditValue)

	out, err := json.Marshal(got[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"CODE_APPRENANT": "42", "CODE_MATIERE": "UE1", "NOM_MATIERE": "",
		"CODE_TYPE_MATIERE": "2", "NUM_ORDRE": "1", "CREDIT_ECTS": 5.5, "NOM_UE": "Droit"
	}`, string(out))
}

func TestGroupByStudent(t *testing.T) {
	grouped := GroupByStudent([]models.CurriculumItem{
		item("S1", "A", models.ItemTypeSubject, "1", ""),
		item("S2", "B", models.ItemTypeSubject, "1", ""),
		item("S1", "C", models.ItemTypeSubject, "2", ""),
	})

	require.Len(t, grouped["S1"], 2)
	assert.Equal(t, "C", grouped["S1"][1].SubjectCode)
	assert.Len(t, grouped["S2"], 1)
}
