package schoolapi

import (
	"errors"
	"fmt"
	"regexp"
)

// Имена наборов данных. Совпадают с ключами models.Dataset.
const (
	QueryGroup           = "GROUPE"
	QueryCampus          = "SITE"
	QueryStudents        = "APPRENANT"
	QuerySubjectAverages = "MOYENNES_UE"
	QueryGeneralAverages = "MOYENNE_GENERALE"
	QueryObservations    = "OBSERVATIONS"
	QueryCredits         = "ECTS_PAR_MATIERE"
	QueryAbsences        = "ABSENCES"
	QueryPeriods         = "PERIODE_EVALUATION"
)

var ErrInvalidCode = errors.New("invalid code")

var codePattern = regexp.MustCompile(`^[0-9]{1,12}$`)

// ValidateCode - коды подставляются прямо в SQL, поэтому допускаем только цифры
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return nil
}

// GroupQueries возвращает именованные запросы для группы, кампуса и периода
func GroupQueries(campus, group, period string) (map[string]string, error) {
	for _, code := range []string{campus, group, period} {
		if err := ValidateCode(code); err != nil {
			return nil, err
		}
	}

	inGroup := fmt.Sprintf("SELECT CODE_APPRENANT FROM INSCRIPTION WHERE CODE_GROUPE = %s", group)

	return map[string]string{
		QueryGroup: fmt.Sprintf(
			"SELECT g.CODE_GROUPE, g.NOM_GROUPE, g.ETENDU_GROUPE, f.NOM_FORMATION "+
				"FROM GROUPE g LEFT JOIN FORMATION f ON f.CODE_FORMATION = g.CODE_FORMATION "+
				"WHERE g.CODE_GROUPE = %s", group),

		QueryCampus: fmt.Sprintf(
			"SELECT CODE_SITE, NOM_SITE FROM SITE WHERE CODE_SITE = %s", campus),

		QueryStudents: fmt.Sprintf(
			"SELECT CODE_APPRENANT, NOM_APPRENANT, PRENOM_APPRENANT, DATE_NAISSANCE "+
				"FROM APPRENANT WHERE CODE_APPRENANT IN (%s) "+
				"ORDER BY NOM_APPRENANT, PRENOM_APPRENANT", inGroup),

		QuerySubjectAverages: fmt.Sprintf(
			"SELECT n.CODE_APPRENANT, e.CODE_MATIERE, m.NOM_MATIERE, AVG(n.VALEUR_NOTE) AS MOYENNE "+
				"FROM NOTE n INNER JOIN EVALUATION e ON n.CODE_EVALUATION = e.CODE_EVALUATION "+
				"INNER JOIN MATIERE m ON e.CODE_MATIERE = m.CODE_MATIERE "+
				"WHERE e.CODE_GROUPE = %s AND e.CODE_PERIODE_EVALUATION = %s "+
				"GROUP BY n.CODE_APPRENANT, e.CODE_MATIERE, m.NOM_MATIERE", group, period),

		QueryGeneralAverages: fmt.Sprintf(
			"SELECT n.CODE_APPRENANT, AVG(n.VALEUR_NOTE) AS MOYENNE_GENERALE "+
				"FROM NOTE n INNER JOIN EVALUATION e ON n.CODE_EVALUATION = e.CODE_EVALUATION "+
				"WHERE e.CODE_GROUPE = %s AND e.CODE_PERIODE_EVALUATION = %s "+
				"GROUP BY n.CODE_APPRENANT", group, period),

		QueryObservations: fmt.Sprintf(
			"SELECT o.CODE_APPRENANT, o.MEMO_OBSERVATION FROM OBSERVATION o "+
				"WHERE o.CODE_GROUPE = %s AND o.CODE_PERIODE_EVALUATION = %s", group, period),

		QueryCredits: fmt.Sprintf(
			"SELECT i.CODE_APPRENANT, m.CODE_MATIERE, m.NOM_MATIERE, m.CODE_TYPE_MATIERE, "+
				"pm.NUM_ORDRE, pm.CREDIT_ECTS "+
				"FROM INSCRIPTION i INNER JOIN PROGRAMME_MATIERE pm ON pm.CODE_GROUPE = i.CODE_GROUPE "+
				"INNER JOIN MATIERE m ON pm.CODE_MATIERE = m.CODE_MATIERE "+
				"WHERE i.CODE_GROUPE = %s", group),

		QueryAbsences: fmt.Sprintf(
			"SELECT a.CODE_APPRENANT, ap.NOM_APPRENANT, ap.PRENOM_APPRENANT, "+
				"a.HEURE_DEBUT, a.HEURE_FIN, a.IS_JUSTIFIE, a.IS_RETARD "+
				"FROM ABSENCE a INNER JOIN APPRENANT ap ON a.CODE_APPRENANT = ap.CODE_APPRENANT "+
				"INNER JOIN PERIODE_EVALUATION p ON p.CODE_PERIODE_EVALUATION = %s "+
				"WHERE a.CODE_APPRENANT IN (%s) AND a.DATE_DEB BETWEEN p.DATE_DEB AND p.DATE_FIN",
			period, inGroup),
	}, nil
}

// PeriodsQuery - список периодов оценивания
func PeriodsQuery() string {
	return "SELECT CODE_PERIODE_EVALUATION, NOM_PERIODE_EVALUATION, DATE_DEB, DATE_FIN " +
		"FROM PERIODE_EVALUATION ORDER BY DATE_DEB"
}
