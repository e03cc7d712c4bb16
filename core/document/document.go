// Package document renders the school's certificates and report PDFs.
package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

const blank = "________________"

var ErrStudentNotFound = errors.New("student not found")

// Document is a rendered PDF and the name it is downloaded under.
type Document struct {
	FileName string
	Content  []byte
}

// FileName builds "<prefix>_<entity>.pdf", keeping letters, digits, '-' and '_' of entity.
// Spaces become '_'; an entity with nothing left falls back to fallback.
func FileName(prefix, entity, fallback string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(entity) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = fallback
	}
	return prefix + "_" + name + ".pdf"
}

type Service struct {
	store  store.Store
	school core.SchoolConfig
	logger core.Logger
}

// NewService builds the document service; a nil logger discards log entries.
func NewService(st store.Store, school core.SchoolConfig, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Service{store: st, school: school, logger: logger}
}

func (svc *Service) today() string {
	return core.Today(svc.school.Location())
}

func (svc *Service) student(ctx context.Context, id string) (schema.Row, error) {
	data, err := svc.store.FetchAll(ctx, []string{schema.TableStudents})
	if err != nil {
		return nil, err
	}
	if stu := findStudent(data[schema.TableStudents], id); stu != nil {
		return stu, nil
	}
	return nil, errors.Wrapf(ErrStudentNotFound, "%s", id)
}

// page is an A4 portrait PDF writing UTF-8 text through the core fonts' code page.
type page struct {
	*fpdf.Fpdf
	tr func(string) string
}

func newPage() *page {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 16)
	pdf.AddPage()
	return &page{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// t prepares s for the core fonts, which have no rupee sign.
func (p *page) t(s string) string {
	return p.tr(strings.ReplaceAll(s, "₹", "Rs."))
}

func (p *page) font(style string, size float64) {
	p.SetFont("Helvetica", style, size)
}

func (p *page) centered(y float64, s string) {
	p.SetXY(10, y)
	p.CellFormat(190, 6, p.t(s), "", 0, "C", false, 0, "")
}

func (p *page) border() {
	p.SetDrawColor(0, 74, 173)
	p.SetLineWidth(0.6)
	p.Rect(10, 10, 190, 277, "D")
}

// header prints the school block and returns the y below it.
func (p *page) header(school core.SchoolConfig, title string) float64 {
	p.border()
	p.font("B", 18)
	p.SetTextColor(0, 74, 173)
	p.centered(18, orDefault(school.Name, "School Name"))

	p.font("", 10)
	p.SetTextColor(80, 80, 80)
	p.centered(26, orDefault(school.Address, "School Address"))
	y := 32.0
	if school.AffiliationNo != "" {
		p.centered(y, "Affiliation No.: "+school.AffiliationNo)
		y += 6
	}

	p.font("B", 14)
	p.SetTextColor(0, 0, 0)
	p.centered(y+4, title)
	p.SetLineWidth(0.3)
	w := p.GetStringWidth(p.t(title))
	p.Line(105-w/2, y+11, 105+w/2, y+11)
	return y + 18
}

// table prints rows under a header line; widths are in mm.
func (p *page) table(y float64, headers []string, widths []float64, rows [][]string) float64 {
	p.SetXY(14, y)
	p.font("B", 9)
	p.SetFillColor(230, 239, 255)
	for i, h := range headers {
		p.CellFormat(widths[i], 7, p.t(h), "1", 0, "C", true, 0, "")
	}
	p.Ln(-1)
	p.font("", 9)
	for _, row := range rows {
		p.SetX(14)
		for i, cell := range row {
			p.CellFormat(widths[i], 6, p.t(cell), "1", 0, "L", false, 0, "")
		}
		p.Ln(-1)
	}
	return p.GetY()
}

func (p *page) signatures(y float64, names ...string) {
	p.font("", 10)
	p.SetLineWidth(0.2)
	slot := 182.0 / float64(len(names))
	for i, name := range names {
		x := 14 + slot*float64(i)
		p.Line(x+8, y-6, x+slot-8, y-6)
		p.SetXY(x, y-4)
		p.CellFormat(slot, 6, p.t(name), "", 0, "C", false, 0, "")
	}
}

func (p *page) footer(generated string) {
	p.SetAutoPageBreak(false, 0)
	defer p.SetAutoPageBreak(true, 16)
	p.font("I", 8)
	p.SetTextColor(120, 120, 120)
	p.SetXY(14, 280)
	p.CellFormat(182, 4, p.t("Generated on "+generated), "", 0, "R", false, 0, "")
	p.SetTextColor(0, 0, 0)
}

func (p *page) render(fileName string) (Document, error) {
	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return Document{}, errors.Wrap(err, "rendering pdf")
	}
	return Document{FileName: fileName, Content: buf.Bytes()}, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// dateText renders a stored date as dd/mm/yyyy, or the raw text when it is not a date.
func dateText(v schema.Value) string {
	if t, ok := v.AsTime(); ok {
		return t.Format("02/01/2006")
	}
	return v.Text()
}

func amount(n float64) string {
	return schema.FormatRupees(n)
}

func percent(n float64) string {
	return fmt.Sprintf("%.2f%%", n)
}

func stamp(now time.Time) string {
	return now.Format("02 Jan 2006 15:04")
}
