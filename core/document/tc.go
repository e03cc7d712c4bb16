package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
)

// TCForm holds what the clerk typed. Empty fields fall back to the stored TC, then
// to the student record.
type TCForm struct {
	StudentID         string `json:"student_id" validate:"required"`
	TCNumber          string `json:"tc_number"`
	AdmissionFileNo   string `json:"admission_file_no"`
	WithdrawalFileNo  string `json:"withdrawal_file_no"`
	RegisterNumber    string `json:"register_number"`
	DOBInWords        string `json:"dob_in_words"`
	PreparedBy        string `json:"prepared_by"`
	HeadOfInstitution string `json:"head_of_institution"`
	LastClass         string `json:"last_class"`
	LastExam          string `json:"last_exam"`
	Result            string `json:"result"`
	IssueDate         string `json:"issue_date" validate:"omitempty,isodate"`
	LeavingDate       string `json:"leaving_date" validate:"omitempty,isodate"`
	ReasonLeaving     string `json:"reason_leaving"`
	Conduct           string `json:"conduct"`
}

// TransferCertificate is the merged content of one certificate.
type TransferCertificate struct {
	StudentID   string
	StudentName string
	FatherName  string
	MotherName  string
	DOB         string
	TCForm
}

func first(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// mergeTC combines the form, the student's latest stored TC row and the student row.
func mergeTC(form TCForm, stu, stored schema.Row, today string) TransferCertificate {
	tc := TransferCertificate{
		StudentID:   stu.Text("student_id"),
		StudentName: stu.Text("name"),
		FatherName:  stu.Text("father_name"),
		MotherName:  stu.Text("mother_name"),
		DOB:         first(dateText(stored.Get("dob")), dateText(stu.Get("dob"))),
		TCForm:      form,
	}
	tc.TCForm.StudentID = tc.StudentID
	tc.TCNumber = first(form.TCNumber, stored.Text("tc_number"))
	tc.AdmissionFileNo = first(form.AdmissionFileNo, stored.Text("admission_file_no"), stu.Text("admission_number"))
	tc.WithdrawalFileNo = first(form.WithdrawalFileNo, stored.Text("withdrawal_file_no"))
	tc.RegisterNumber = first(form.RegisterNumber, stored.Text("register_number"), stu.Text("roll_number"))
	tc.DOBInWords = first(form.DOBInWords, stored.Text("dob_in_words"))
	tc.PreparedBy = first(form.PreparedBy, stored.Text("prepared_by"), "Admin")
	tc.HeadOfInstitution = first(form.HeadOfInstitution, stored.Text("head_of_institution"), "Principal")
	tc.LastClass = first(form.LastClass, stored.Text("last_class"), stu.Text("class_name"))
	tc.LastExam = first(form.LastExam, stored.Text("last_exam_result"))
	tc.IssueDate = first(form.IssueDate, stored.Text("date_of_issue"), stored.Text("prepared_date"), today)
	tc.ReasonLeaving = first(form.ReasonLeaving, stored.Text("reason_for_leaving"))
	tc.Conduct = first(form.Conduct, stored.Text("general_conduct"), "Good")
	return tc
}

// Lines are the 13 numbered lines of the certificate body.
func (tc TransferCertificate) Lines() []string {
	or := func(s string) string { return orDefault(s, blank) }
	return []string{
		"1. Name of Student : " + or(tc.StudentName),
		"2. Father's Name : " + or(tc.FatherName),
		"3. Mother's Name : " + or(tc.MotherName),
		"4. Admission File No. : " + or(tc.AdmissionFileNo),
		"5. Withdrawal File No. : " + or(tc.WithdrawalFileNo),
		"6. Register Number : " + or(tc.RegisterNumber),
		"7. Date of Birth : " + or(tc.DOB) + " (in figures)",
		"8. Date of Birth (in words) : " + or(tc.DOBInWords),
		"9. Class in which pupil last studied : " + or(tc.LastClass),
		fmt.Sprintf("10. Last examination taken with result : %s (%s)", or(tc.LastExam), orDefault(tc.Result, "________")),
		"11. Date of leaving the school : " + or(tc.LeavingDate),
		"12. Reason for leaving : " + or(tc.ReasonLeaving),
		"13. Conduct : " + or(tc.Conduct),
	}
}

// TransferCertificate renders the TC of form.StudentID then records it. Recording is
// best effort: a failed write is logged and the PDF is still returned.
func (svc *Service) TransferCertificate(ctx context.Context, form TCForm) (Document, error) {
	data, err := svc.store.FetchAll(ctx, []string{schema.TableStudents, schema.TableStudentTransferCertificates})
	if err != nil {
		return Document{}, err
	}
	stu := findStudent(data[schema.TableStudents], form.StudentID)
	if stu == nil {
		return Document{}, ErrStudentNotFound
	}
	var stored schema.Row
	for _, r := range data[schema.TableStudentTransferCertificates] {
		if r.Text("student_id") == stu.Text("student_id") {
			stored = r // latest wins, rows come oldest first
		}
	}

	tc := mergeTC(form, stu, stored, svc.today())
	doc, err := renderTC(svc.school, tc)
	if err != nil {
		return Document{}, err
	}
	if err = svc.saveTC(ctx, tc); err != nil {
		svc.logger.Error("saving transfer certificate", err, map[string]interface{}{
			"student_id": tc.StudentID,
			"tc_number":  tc.TCNumber,
		})
	}
	return doc, nil
}

// saveTC upserts on tc_number.
func (svc *Service) saveTC(ctx context.Context, tc TransferCertificate) error {
	if tc.StudentID == "" || tc.TCNumber == "" {
		return nil
	}
	row := schema.Row{
		"student_id":          schema.String(tc.StudentID),
		"tc_number":           schema.String(tc.TCNumber),
		"admission_file_no":   schema.String(tc.AdmissionFileNo),
		"withdrawal_file_no":  schema.String(tc.WithdrawalFileNo),
		"register_number":     schema.String(tc.RegisterNumber),
		"dob_in_words":        schema.String(tc.DOBInWords),
		"prepared_by":         schema.String(tc.PreparedBy),
		"prepared_date":       schema.String(isoDate(tc.IssueDate, svc.today())),
		"head_of_institution": schema.String(tc.HeadOfInstitution),
	}.NullifyEmpty()

	data, err := svc.store.FetchAll(ctx, []string{schema.TableStudentTransferCertificates})
	if err != nil {
		return err
	}
	for _, r := range data[schema.TableStudentTransferCertificates] {
		if r.Text("tc_number") == tc.TCNumber {
			return svc.store.UpdateRecord(ctx, schema.TableStudentTransferCertificates, row, []string{"tc_number"})
		}
	}
	return svc.store.InsertRecord(ctx, schema.TableStudentTransferCertificates, row)
}

// isoDate returns s as YYYY-MM-DD, or def when s is not a date.
func isoDate(s, def string) string {
	if t, ok := schema.ParseTime(s); ok {
		return t.Format(core.DateLayout)
	}
	return def
}

func findStudent(rows []schema.Row, id string) schema.Row {
	id = strings.TrimSpace(id)
	for _, r := range rows {
		if strings.EqualFold(r.Text("student_id"), id) {
			return r
		}
	}
	return nil
}

func renderTC(school core.SchoolConfig, tc TransferCertificate) (Document, error) {
	p := newPage()
	y := p.header(school, "TRANSFER CERTIFICATE")

	p.font("", 10)
	p.SetXY(20, y)
	p.CellFormat(90, 6, p.t("TC No.: "+orDefault(tc.TCNumber, "________")), "", 0, "L", false, 0, "")
	p.CellFormat(80, 6, p.t("Issue Date: "+orDefault(tc.IssueDate, "________")), "", 0, "R", false, 0, "")

	p.font("", 11)
	y += 14
	for _, line := range tc.Lines() {
		p.SetXY(20, y)
		p.CellFormat(170, 6, p.t(line), "", 0, "L", false, 0, "")
		y += 8
	}

	p.signatures(250, "Class Teacher", "Checker", tc.HeadOfInstitution)
	p.font("I", 8)
	p.SetXY(20, 258)
	p.CellFormat(170, 5, p.t("Prepared by: "+tc.PreparedBy), "", 0, "L", false, 0, "")
	return p.render(FileName("TC", tc.StudentName, "student"))
}
