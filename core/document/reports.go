package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/engine"
	"github.com/trezcool/sunrise/core/report"
	"github.com/trezcool/sunrise/core/schema"
)

// AttendancePDF lists an attendance report; student names the file, "all" when empty.
func (svc *Service) AttendancePDF(rep report.AttendanceReport, student string) (Document, error) {
	p := newPage()
	y := p.header(svc.school, "ATTENDANCE REPORT")

	p.font("", 10)
	p.SetXY(14, y-4)
	s := rep.Summary
	p.CellFormat(182, 5, p.t(fmt.Sprintf("Present: %d   Absent: %d   Leave: %d   Total: %d",
		s.Present, s.Absent, s.Leave, s.Total)), "", 0, "C", false, 0, "")

	rows := make([][]string, 0, len(rep.Rows))
	for i, r := range rep.Rows {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			r.Text("student_id"),
			dateText(r.Get("attendance_date")),
			strings.ToUpper(r.Text("status")),
			r.Text("remarks"),
		})
	}
	p.table(y+4, []string{"S.No", "Student ID", "Date", "Status", "Remarks"},
		[]float64{16, 40, 30, 30, 66}, rows)
	p.footer(stamp(core.NowFunc().In(svc.school.Location())))
	return p.render(FileName("Attendance", student, "all"))
}

// ResultReportPDF lists the results of a class, "all" when class is empty.
func (svc *Service) ResultReportPDF(results []report.StudentResult, class string) (Document, error) {
	p := newPage()
	y := p.header(svc.school, "RESULT REPORT")

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			fmt.Sprint(i + 1), r.StudentID, r.Name, r.Class, r.Term,
			fmt.Sprintf("%s / %s", num(r.Obtained), num(r.Max)), percent(r.Percentage), r.Outcome(),
		})
	}
	p.table(y, []string{"S.No", "Student ID", "Name", "Class", "Term", "Marks", "%", "Result"},
		[]float64{12, 26, 42, 16, 24, 26, 18, 18}, rows)
	p.footer(stamp(core.NowFunc().In(svc.school.Location())))
	return p.render(FileName("ResultReport", class, "all"))
}

// FeeReportPDF lists fee records per student with their totals.
func (svc *Service) FeeReportPDF(rep report.FeeReport, student string) (Document, error) {
	p := newPage()
	y := p.header(svc.school, "FEE REPORT")

	var rows [][]string
	for _, sf := range rep.Students {
		for _, l := range sf.Lines {
			rows = append(rows, []string{
				sf.StudentID, l.Month, amount(l.Paid), amount(l.Discount), amount(l.Fine), amount(l.Due), l.Receipt,
			})
		}
		rows = append(rows, []string{
			sf.StudentID + " total", "", amount(sf.Totals.Paid), amount(sf.Totals.Discount),
			amount(sf.Totals.Fine), amount(sf.Totals.Due), "",
		})
	}
	y = p.table(y, []string{"Student ID", "Month", "Paid", "Discount", "Fine", "Due", "Receipt"},
		[]float64{34, 24, 26, 24, 20, 26, 28}, rows)

	t := rep.Totals
	p.font("B", 10)
	p.SetXY(14, y+6)
	p.CellFormat(182, 6, p.t(fmt.Sprintf("Overall: paid %s, discount %s, fine %s, due %s",
		amount(t.Paid), amount(t.Discount), amount(t.Fine), amount(t.Due))), "", 0, "L", false, 0, "")
	p.footer(stamp(core.NowFunc().In(svc.school.Location())))
	return p.render(FileName("FeeReport", student, "all"))
}

// DetailsPDF prints one record as a Field/Value table.
func (svc *Service) DetailsPDF(table string, details []engine.Detail) (Document, error) {
	p := newPage()
	y := p.header(svc.school, strings.ToUpper(strings.ReplaceAll(table, "_", " "))+" DETAILS")

	rows := make([][]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, []string{d.Field, d.Value})
	}
	p.table(y, []string{"Field", "Value"}, []float64{60, 122}, rows)
	p.footer(stamp(core.NowFunc().In(svc.school.Location())))
	return p.render(FileName("Details", table, "record"))
}

// SearchStudents matches q, ignoring case, against name, email, class and student ID.
func SearchStudents(rows []schema.Row, q string) []schema.Row {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []schema.Row{}
	for _, r := range rows {
		if q == "" {
			out = append(out, r)
			continue
		}
		for _, f := range []string{"name", "email", "class_name", "student_id"} {
			if strings.Contains(strings.ToLower(r.Text(f)), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func (svc *Service) SearchStudents(ctx context.Context, q string) ([]schema.Row, error) {
	data, err := svc.store.FetchAll(ctx, []string{schema.TableStudents})
	if err != nil {
		return nil, err
	}
	return SearchStudents(data[schema.TableStudents], q), nil
}
