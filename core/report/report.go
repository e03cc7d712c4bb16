// Package report aggregates attendance, results and fees from fetched rows.
package report

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

// PassPercentage is the minimum percentage to pass an exam term.
const PassPercentage = 33.0

// Service loads the tables a report needs in one FetchAll.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (svc *Service) Attendance(ctx context.Context, f AttendanceFilter) (AttendanceReport, error) {
	data, err := svc.store.FetchAll(ctx, []string{schema.TableAttendance})
	if err != nil {
		return AttendanceReport{}, err
	}
	return Attendance(data[schema.TableAttendance], f), nil
}

func (svc *Service) Results(ctx context.Context, f ResultFilter) ([]StudentResult, error) {
	data, err := svc.store.FetchAll(ctx, []string{
		schema.TableStudents, schema.TableExamSubjectMarks, schema.TableSubjects,
	})
	if err != nil {
		return nil, err
	}
	return Results(data[schema.TableStudents], data[schema.TableExamSubjectMarks], data[schema.TableSubjects], f), nil
}

func (svc *Service) Fees(ctx context.Context, f FeeFilter) (FeeReport, error) {
	data, err := svc.store.FetchAll(ctx, []string{
		schema.TableStudentFeeRecords, schema.TableMonthlyFeeStructure,
	})
	if err != nil {
		return FeeReport{}, err
	}
	return Fees(data[schema.TableStudentFeeRecords], data[schema.TableMonthlyFeeStructure], f), nil
}

// HistoryEntry is one audit entry. No audit trail is recorded yet, so History is always empty.
type HistoryEntry struct {
	At      string `json:"at"`
	Actor   string `json:"actor"`
	Message string `json:"message"`
}

func (svc *Service) History(context.Context) []HistoryEntry {
	return []HistoryEntry{}
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// AttendanceFilter dates are YYYY-MM-DD and inclusive; empty fields match everything.
type AttendanceFilter struct {
	Status  string `query:"status"`
	Student string `query:"student"`
	From    string `query:"from"`
	To      string `query:"to"`
}

type AttendanceSummary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Leave   int `json:"leave"`
	Total   int `json:"total"`
}

type AttendanceReport struct {
	Rows    []schema.Row      `json:"rows"`
	Summary AttendanceSummary `json:"summary"`
}

// Attendance filters rows and orders them by date, newest first.
func Attendance(rows []schema.Row, f AttendanceFilter) AttendanceReport {
	status := strings.ToLower(strings.TrimSpace(f.Status))
	if status == "all" {
		status = ""
	}
	from, hasFrom := schema.ParseTime(f.From)
	to, hasTo := schema.ParseTime(f.To)

	rep := AttendanceReport{Rows: []schema.Row{}}
	for _, r := range rows {
		rowStatus := strings.ToLower(r.Text("status"))
		if status != "" && rowStatus != status {
			continue
		}
		if f.Student != "" && !contains(r.Text("student_id"), f.Student) {
			continue
		}
		if hasFrom || hasTo {
			day, ok := r.Time("attendance_date")
			if !ok || (hasFrom && day.Before(from)) || (hasTo && day.After(to)) {
				continue
			}
		}
		rep.Rows = append(rep.Rows, r)
		switch rowStatus {
		case "present":
			rep.Summary.Present++
		case "absent":
			rep.Summary.Absent++
		case "leave":
			rep.Summary.Leave++
		}
	}
	rep.Summary.Total = len(rep.Rows)

	sort.SliceStable(rep.Rows, func(i, j int) bool {
		return schema.Compare(rep.Rows[i].Get("attendance_date"), rep.Rows[j].Get("attendance_date")) > 0
	})
	return rep
}

type ResultFilter struct {
	Class   string `query:"class"`
	Term    string `query:"term"`
	Session string `query:"session"`
	Student string `query:"student"`
}

type SubjectMark struct {
	SubjectCode string  `json:"subject_code"`
	SubjectName string  `json:"subject_name"`
	Max         float64 `json:"max_marks"`
	Obtained    float64 `json:"obtained_marks"`
	Grade       string  `json:"grade"`
}

type StudentResult struct {
	StudentID  string        `json:"student_id"`
	Name       string        `json:"name"`
	Class      string        `json:"class_name"`
	Term       string        `json:"term_name"`
	Session    string        `json:"session_year"`
	Subjects   []SubjectMark `json:"subjects"`
	Obtained   float64       `json:"obtained"`
	Max        float64       `json:"max"`
	Percentage float64       `json:"percentage"`
	Passed     bool          `json:"passed"`
}

func (r StudentResult) Outcome() string {
	if r.Passed {
		return "Pass"
	}
	return "Fail"
}

// Results totals the marks of each student, term and session matching f.
func Results(students, marks, subjects []schema.Row, f ResultFilter) []StudentResult {
	byID := make(map[string]schema.Row, len(students))
	for _, s := range students {
		byID[s.Text("student_id")] = s
	}
	subjectNames := make(map[string]string, len(subjects))
	for _, s := range subjects {
		subjectNames[s.Text("code")] = s.Text("name")
	}

	var order []string
	results := make(map[string]*StudentResult)
	for _, m := range marks {
		sid := m.Text("student_id")
		stu := byID[sid]
		if f.Class != "" && !sameText(stu.Text("class_name"), f.Class) {
			continue
		}
		if f.Term != "" && !sameText(m.Text("term_name"), f.Term) {
			continue
		}
		if f.Session != "" && !sameText(m.Text("session_year"), f.Session) {
			continue
		}
		if f.Student != "" && !contains(sid, f.Student) && !contains(stu.Text("name"), f.Student) {
			continue
		}

		key := sid + "\x00" + m.Text("term_name") + "\x00" + m.Text("session_year")
		res, ok := results[key]
		if !ok {
			res = &StudentResult{
				StudentID: sid,
				Name:      stu.Text("name"),
				Class:     stu.Text("class_name"),
				Term:      m.Text("term_name"),
				Session:   m.Text("session_year"),
			}
			results[key] = res
			order = append(order, key)
		}
		code := m.Text("subject_code")
		mark := SubjectMark{
			SubjectCode: code,
			SubjectName: subjectNames[code],
			Max:         m.Num("max_marks"),
			Obtained:    m.Num("obtained_marks"),
			Grade:       m.Text("grade"),
		}
		if mark.SubjectName == "" {
			mark.SubjectName = code
		}
		res.Subjects = append(res.Subjects, mark)
		res.Max += mark.Max
		res.Obtained += mark.Obtained
	}

	out := make([]StudentResult, 0, len(order))
	for _, key := range order {
		res := results[key]
		if res.Max > 0 {
			res.Percentage = round2(res.Obtained / res.Max * 100)
		}
		res.Passed = res.Max > 0 && res.Percentage >= PassPercentage
		out = append(out, *res)
	}
	return out
}

type FeeFilter struct {
	Student string `query:"student"`
	Month   string `query:"month"`
}

type FeeTotals struct {
	Paid     float64 `json:"paid"`
	Discount float64 `json:"discount"`
	Fine     float64 `json:"fine"`
	Due      float64 `json:"due"`
}

func (t *FeeTotals) add(l FeeLine) {
	t.Paid += l.Paid
	t.Discount += l.Discount
	t.Fine += l.Fine
	t.Due += l.Due
}

type FeeLine struct {
	RecordID    string  `json:"record_id"`
	FeeCode     string  `json:"fee_code"`
	Month       string  `json:"month_name"`
	Description string  `json:"fee_description"`
	Paid        float64 `json:"paid_amount"`
	Discount    float64 `json:"discount"`
	Fine        float64 `json:"fine"`
	Due         float64 `json:"due_amount"`
	PaymentDate string  `json:"payment_date"`
	Receipt     string  `json:"receipt_number"`
}

type StudentFees struct {
	StudentID string    `json:"student_id"`
	Lines     []FeeLine `json:"lines"`
	Totals    FeeTotals `json:"totals"`
}

type FeeReport struct {
	Students []StudentFees `json:"students"`
	Totals   FeeTotals     `json:"totals"`
}

// Fees joins fee records with the monthly fee structure and totals them per student.
func Fees(records, structure []schema.Row, f FeeFilter) FeeReport {
	fees := make(map[string]schema.Row, len(structure))
	for _, s := range structure {
		fees[s.Text("fee_code")] = s
	}

	rep := FeeReport{Students: []StudentFees{}}
	index := make(map[string]int)
	for _, r := range records {
		sid := r.Text("student_id")
		fee := fees[r.Text("fee_code")]
		if f.Student != "" && !contains(sid, f.Student) {
			continue
		}
		if f.Month != "" && !sameText(fee.Text("month_name"), f.Month) {
			continue
		}
		line := FeeLine{
			RecordID:    r.Text("record_id"),
			FeeCode:     r.Text("fee_code"),
			Month:       fee.Text("month_name"),
			Description: fee.Text("fee_description"),
			Paid:        r.Num("paid_amount"),
			Discount:    r.Num("discount"),
			Fine:        r.Num("fine"),
			Due:         r.Num("due_amount"),
			PaymentDate: r.Text("payment_date"),
			Receipt:     r.Text("receipt_number"),
		}
		i, ok := index[sid]
		if !ok {
			i = len(rep.Students)
			index[sid] = i
			rep.Students = append(rep.Students, StudentFees{StudentID: sid})
		}
		rep.Students[i].Lines = append(rep.Students[i].Lines, line)
		rep.Students[i].Totals.add(line)
		rep.Totals.add(line)
	}
	return rep
}
