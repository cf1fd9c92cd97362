// Package render строит PDF-бюллетень одного студента.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"bulletins/internal/models"
	"bulletins/pkg/periods"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	margin     = 50.0
	lineHeight = 20.0

	colNote = margin + 250
	colECTS = margin + 325
)

// Bulletin - все данные одного студента, уже отфильтрованные по нему
type Bulletin struct {
	Period         string
	Student        models.Student
	Group          *models.GroupInfo
	Campus         *models.CampusInfo
	Curriculum     []models.CurriculumItem
	Averages       []models.SubjectAverage
	GeneralAverage *models.GeneralAverage
	Attendance     *models.AttendanceSummary
	Observation    *models.Observation
}

// Row - строка таблицы оценок
type Row struct {
	Label string
	Note  string
	ECTS  string
	Unit  bool
}

type Renderer struct {
	schoolName string
}

func NewRenderer(schoolName string) *Renderer {
	return &Renderer{schoolName: schoolName}
}

// Rows строит таблицу: элементы учебного плана по порядку, затем оценки
// по предметам, которых в плане нет
func (b *Bulletin) Rows() []Row {
	averages := make(map[string]models.SubjectAverage, len(b.Averages))
	for _, avg := range b.Averages {
		if _, ok := averages[string(avg.SubjectCode)]; !ok {
			averages[string(avg.SubjectCode)] = avg
		}
	}

	rows := make([]Row, 0, len(b.Curriculum)+len(b.Averages))
	used := make(map[string]bool, len(b.Curriculum))
	for _, item := range b.Curriculum {
		if item.IsUnit() {
			rows = append(rows, Row{Label: item.SubjectName, ECTS: FormatCredit(item.CreditValue), Unit: true})
			continue
		}

		note := "-"
		if avg, ok := averages[item.SubjectCode]; ok {
			note = FormatAverage(avg.Average)
			used[item.SubjectCode] = true
		}
		rows = append(rows, Row{Label: item.SubjectName, Note: note, ECTS: FormatCredit(item.CreditValue)})
	}

	for _, avg := range b.Averages {
		code := string(avg.SubjectCode)
		if used[code] {
			continue
		}
		used[code] = true
		rows = append(rows, Row{Label: avg.SubjectName, Note: FormatAverage(avg.Average), ECTS: "0"})
	}

	return rows
}

type page struct {
	pdf *fpdf.Fpdf
	enc *encoding.Encoder
	y   float64
	h   float64
	w   float64
}

func (p *page) text(style string, size float64, s string) {
	p.pdf.SetFont("Times", style, size)
	p.pdf.Text(margin, p.y, p.encode(s))
}

func (p *page) encode(s string) string {
	out, err := p.enc.String(s)
	if err != nil {
		return s
	}
	return out
}

// ensure переносит вывод на новую страницу, если строка не помещается
func (p *page) ensure() {
	if p.y > p.h-margin {
		p.pdf.AddPage()
		p.y = margin
	}
}

// Render возвращает PDF в байтах
func (r *Renderer) Render(b Bulletin) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Bulletin "+b.Student.FullName(), true)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	p := &page{
		pdf: pdf,
		enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
		y:   margin + 12,
		w:   w,
		h:   h,
	}

	r.header(p, &b)
	r.table(p, &b)

	p.ensure()
	p.text("B", 12, FormatGeneralAverage(b.GeneralAverage))
	p.y += lineHeight * 2

	r.absences(p, b.Attendance)
	r.observation(p, b.Observation)

	if pdf.Err() {
		return nil, fmt.Errorf("render bulletin %s: %w", b.Student.StudentID, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write bulletin %s: %w", b.Student.StudentID, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(p *page, b *Bulletin) {
	p.pdf.SetTextColor(10, 93, 129)
	p.text("B", 16, r.schoolName)
	p.pdf.SetTextColor(0, 0, 0)
	p.y += lineHeight * 1.5

	p.text("B", 14, "BULLETIN DE NOTES - "+b.Period)
	p.y += lineHeight * 2

	p.text("B", 12, "Étudiant: "+b.Student.FullName())
	p.y += lineHeight

	if birth := strings.TrimSpace(string(b.Student.BirthDate)); birth != "" {
		if t, err := periods.ParseDate(birth); err == nil {
			birth = t.Format("02/01/2006")
		}
		p.text("", 10, "Date de naissance: "+birth)
		p.y += lineHeight
	}

	p.text("", 10, "Code étudiant: "+string(b.Student.StudentID))
	p.y += lineHeight

	if b.Group != nil {
		group := "Groupe: " + b.Group.Name
		if b.Group.Extension != "" {
			group += " - " + b.Group.Extension
		}
		p.text("", 10, group)
		p.y += lineHeight
	}

	if b.Campus != nil {
		p.text("", 10, "Campus: "+b.Campus.Name)
		p.y += lineHeight
	}

	if b.Group != nil && b.Group.Programme != "" {
		p.text("", 10, "Formation: "+b.Group.Programme)
		p.y += lineHeight * 2
	} else {
		p.y += lineHeight
	}
}

func (r *Renderer) table(p *page, b *Bulletin) {
	p.pdf.SetFont("Times", "B", 12)
	p.pdf.Text(margin, p.y, p.encode("Matière"))
	p.pdf.Text(colNote, p.y, "Note")
	p.pdf.Text(colECTS, p.y, "ECTS")
	p.y += lineHeight

	p.pdf.SetLineWidth(1)
	p.pdf.Line(margin, p.y-lineHeight+5, p.w-margin, p.y-lineHeight+5)
	p.y += lineHeight / 2

	for _, row := range b.Rows() {
		style := ""
		if row.Unit {
			style = "B"
		}
		p.pdf.SetFont("Times", style, 10)
		p.pdf.Text(margin, p.y, p.encode(row.Label))
		p.pdf.Text(colNote, p.y, row.Note)
		p.pdf.Text(colECTS, p.y, row.ECTS)
		p.y += lineHeight
		p.ensure()
	}
}

func (r *Renderer) absences(p *page, a *models.AttendanceSummary) {
	justified, unjustified, late := "00h00", "00h00", "00h00"
	if a != nil {
		justified, unjustified, late = a.JustifiedDuration, a.UnjustifiedDuration, a.LateDuration
	}

	p.ensure()
	p.text("B", 12, "Absences:")
	p.y += lineHeight

	for _, line := range []string{
		"Justifiées: " + justified,
		"Injustifiées: " + unjustified,
		"Retards: " + late,
	} {
		p.ensure()
		p.text("", 10, line)
		p.y += lineHeight
	}
	p.y += lineHeight
}

func (r *Renderer) observation(p *page, o *models.Observation) {
	if o == nil {
		return
	}

	p.ensure()
	p.text("B", 12, "Observations:")
	p.y += lineHeight

	p.pdf.SetFont("Times", "", 10)
	width := func(s string) float64 { return p.pdf.GetStringWidth(p.encode(s)) }

	for _, line := range wrapWords(SanitizeObservation(o.Memo), p.w-2*margin, width) {
		p.ensure()
		p.pdf.SetFont("Times", "", 10)
		p.pdf.Text(margin, p.y, p.encode(line))
		p.y += lineHeight
	}
}
