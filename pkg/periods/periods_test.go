package periods

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
	{"CODE_PERIODE_EVALUATION": 11, "NOM_PERIODE_EVALUATION": "Semestre 1", "DATE_DEB": "2024-09-02 00:00:00", "DATE_FIN": "2025-01-31 00:00:00"},
	{"CODE_PERIODE_EVALUATION": "12", "NOM_PERIODE_EVALUATION": "Semestre 2", "DATE_DEB": "2025-02-01", "DATE_FIN": "2025-07-31"},
	{"CODE_PERIODE_EVALUATION": 13, "NOM_PERIODE_EVALUATION": "Annee", "DATE_DEB": "2024-08-26 00:00:00", "DATE_FIN": "2025-07-31 00:00:00"},
	{"CODE_PERIODE_EVALUATION": 9, "NOM_PERIODE_EVALUATION": "Ancien", "DATE_DEB": "2023-09-01", "DATE_FIN": "2024-01-31"},
	{"CODE_PERIODE_EVALUATION": 14, "NOM_PERIODE_EVALUATION": "Ete", "DATE_DEB": "2025-07-01", "DATE_FIN": "2025-08-31"}
]`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestParse(t *testing.T) {
	periods, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, periods, 5)

	assert.Equal(t, "11", periods[0].Code)
	assert.Equal(t, "12", periods[1].Code)
	assert.Equal(t, "Semestre 1", periods[0].Name)
	assert.True(t, periods[0].Start.Equal(date(2024, time.September, 2)))
	assert.True(t, periods[1].End.Equal(date(2025, time.July, 31)))
}

func TestParse_BadDate(t *testing.T) {
	_, err := Parse([]byte(`[{"CODE_PERIODE_EVALUATION": 1, "NOM_PERIODE_EVALUATION": "X", "DATE_DEB": "soon", "DATE_FIN": "2025-01-01"}]`))
	assert.Error(t, err)
}

func TestFilterWindow(t *testing.T) {
	periods, err := Parse([]byte(sample))
	require.NoError(t, err)

	got := FilterWindow(periods, date(2024, time.August, 26), date(2025, time.July, 31))

	codes := make([]string, 0, len(got))
	for _, p := range got {
		codes = append(codes, p.Code)
	}
	assert.Equal(t, []string{"11", "12", "13"}, codes)
}

func TestFind(t *testing.T) {
	periods, err := Parse([]byte(sample))
	require.NoError(t, err)

	p, ok := Find(periods, "13")
	assert.True(t, ok)
	assert.Equal(t, "Annee", p.Name)

	_, ok = Find(periods, "404")
	assert.False(t, ok)
}
