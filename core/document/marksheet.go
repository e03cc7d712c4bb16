package document

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core/report"
	"github.com/trezcool/sunrise/core/schema"
)

var ErrNoMarks = errors.New("no marks recorded for this student, term and session")

// VerifyURL is the address printed in the marksheet QR code.
func VerifyURL(base, studentID, term, session string) string {
	return fmt.Sprintf("%s/verify?sid=%s&term=%s&session=%s",
		strings.TrimRight(base, "/"),
		url.QueryEscape(studentID), url.QueryEscape(term), url.QueryEscape(session))
}

// Marksheet renders the result certificate of one student for one term and session.
func (svc *Service) Marksheet(ctx context.Context, studentID, term, session string) (Document, error) {
	data, err := svc.store.FetchAll(ctx, []string{
		schema.TableStudents, schema.TableExamSubjectMarks, schema.TableSubjects,
	})
	if err != nil {
		return Document{}, err
	}
	stu := findStudent(data[schema.TableStudents], studentID)
	if stu == nil {
		return Document{}, ErrStudentNotFound
	}

	results := report.Results(data[schema.TableStudents], data[schema.TableExamSubjectMarks], data[schema.TableSubjects],
		report.ResultFilter{Term: term, Session: session})
	for _, res := range results {
		if res.StudentID == stu.Text("student_id") {
			return renderMarksheet(svc, stu, res)
		}
	}
	return Document{}, ErrNoMarks
}

func renderMarksheet(svc *Service, stu schema.Row, res report.StudentResult) (Document, error) {
	p := newPage()
	y := p.header(svc.school, "MARKSHEET / RESULT CERTIFICATE")

	p.font("", 10)
	p.SetXY(14, y-4)
	p.CellFormat(182, 5, p.t(fmt.Sprintf("%s  |  Session %s", res.Term, res.Session)), "", 0, "C", false, 0, "")

	p.SetFillColor(245, 248, 255)
	p.Rect(14, y+4, 182, 26, "F")
	info := [][2]string{
		{"Student Name : " + orDefault(res.Name, blank), "Class : " + orDefault(res.Class, "____")},
		{"Father's Name : " + orDefault(stu.Text("father_name"), blank), "Section : " + orDefault(stu.Text("section"), "-")},
		{"Mother's Name : " + orDefault(stu.Text("mother_name"), blank), "Roll No. : " + orDefault(stu.Text("roll_number"), "____")},
	}
	for i, line := range info {
		p.SetXY(18, y+8+float64(i)*7)
		p.CellFormat(100, 6, p.t(line[0]), "", 0, "L", false, 0, "")
		p.CellFormat(74, 6, p.t(line[1]), "", 0, "L", false, 0, "")
	}

	rows := make([][]string, 0, len(res.Subjects)+1)
	for i, s := range res.Subjects {
		rows = append(rows, []string{
			fmt.Sprint(i + 1), s.SubjectName, num(s.Max), num(s.Obtained), orDefault(s.Grade, "-"),
		})
	}
	rows = append(rows, []string{"", "Total", num(res.Max), num(res.Obtained), ""})
	y = p.table(y+36, []string{"S.No", "Subject", "Max Marks", "Marks Obtained", "Grade"},
		[]float64{16, 76, 30, 36, 24}, rows)

	p.font("B", 11)
	p.SetXY(18, y+8)
	p.CellFormat(100, 7, p.t(fmt.Sprintf("Total Marks: %s / %s", num(res.Obtained), num(res.Max))), "", 2, "L", false, 0, "")
	p.CellFormat(100, 7, p.t("Percentage: "+percent(res.Percentage)), "", 2, "L", false, 0, "")
	p.CellFormat(100, 7, p.t("Result: "+res.Outcome()), "", 2, "L", false, 0, "")

	verify := VerifyURL(svc.school.PublicURL, res.StudentID, res.Term, res.Session)
	if err := p.qrImage("verify-qr", verify); err != nil {
		return Document{}, err
	}
	p.ImageOptions("verify-qr", 160, y+6, 30, 30, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	p.font("", 8)
	p.SetTextColor(120, 120, 120)
	p.SetXY(155, y+37)
	p.CellFormat(40, 4, p.t("Scan to verify"), "", 0, "C", false, 0, "")
	p.SetTextColor(0, 0, 0)

	p.signatures(268, "Class Teacher", "Exam Incharge", "Principal")
	return p.render(FileName("Result", res.Name, "student"))
}

func num(n float64) string {
	return schema.Number(n).Text()
}
