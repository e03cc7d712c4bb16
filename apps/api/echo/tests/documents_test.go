package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/report"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/user"
)

func seedSchool(t *testing.T, app *testApp) {
	t.Helper()
	seedStudents(t, app)
	app.insert(t, schema.TableSubjects, schema.Row{"code": schema.String("MATH"), "name": schema.String("Mathematics")})
	app.insert(t, schema.TableExamSubjectMarks, schema.Row{
		"student_id": schema.String("S1"), "term_name": schema.String("Term 1"), "session_year": schema.String("2024-25"),
		"subject_code": schema.String("MATH"), "max_marks": schema.Number(100), "obtained_marks": schema.Number(30),
	})
	for _, a := range []struct{ id, date, status string }{
		{"S1", "2024-07-01", "present"},
		{"S2", "2024-07-01", "absent"},
		{"S1", "2024-07-02", "leave"},
	} {
		app.insert(t, schema.TableAttendance, schema.Row{
			"student_id": schema.String(a.id), "attendance_date": schema.String(a.date), "status": schema.String(a.status),
		})
	}
	app.insert(t, schema.TableStudentFeeRecords, schema.Row{
		"student_id": schema.String("S1"), "fee_code": schema.String("F1"), "paid_amount": schema.Number(1500),
	})
}

func assertDocument(t *testing.T, app *testApp, method, path, token string, body []byte, fileName string) {
	t.Helper()
	req, rec := newAuthRequest(method, path, token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+fileName+`"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"), "not a pdf")
}

func Test_certificateApi(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	_, studentToken := app.createUser(t, "student", user.RoleStudent)
	seedSchool(t, app)

	t.Run("documents", func(t *testing.T) {
		assertDocument(t, app, http.MethodPost, "/v1/teacher/certificates/tc", teacherToken,
			[]byte(`{"student_id": " S3 ", "tc_number": "TC-1"}`), "TC_Meera.pdf")
		assertDocument(t, app, http.MethodGet, "/v1/admin/certificates/idcard/S2", adminToken, nil, "ID_asha.pdf")
		assertDocument(t, app, http.MethodGet, "/v1/admin/certificates/result/S1?term=Term+1", adminToken, nil, "Result_Ravi.pdf")
	})

	t.Run("search", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/teacher/certificates/students?q=MEE", teacherToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var found []schema.Row
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
		require.Len(t, found, 1)
		assert.Equal(t, "Meera", found[0].Text("name"))
		assert.Equal(t, "meera@school.in", found[0].Text("email"))
	})

	tcs := app.rows(t, schema.TableStudentTransferCertificates)
	require.Len(t, tcs, 1)
	assert.Equal(t, "TC-1", tcs[0].Text("tc_number"))

	runHTTPTests(t, app, []httpTest{
		{
			name: "students have no certificates", path: "/v1/student/certificates/idcard/S1", token: studentToken,
			wantCode: http.StatusNotFound,
		},
		{
			name: "tc requires a student", method: http.MethodPost, path: "/v1/admin/certificates/tc", token: adminToken,
			body: []byte(`{"tc_number": "TC-2"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"student_id": core.RequiredText}),
		},
		{
			name: "unknown student", path: "/v1/admin/certificates/idcard/S404", token: adminToken, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "term required", path: "/v1/admin/certificates/result/S1", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"term": core.RequiredText}),
		},
		{
			name: "malformed session", path: "/v1/admin/certificates/result/S1?term=Term+1&session=2024-26", token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"session": "must be an academic session like 2024-25"}),
		},
		{
			name: "tc issue date must be a date", method: http.MethodPost, path: "/v1/admin/certificates/tc", token: adminToken,
			body: []byte(`{"student_id": "S1", "issue_date": "01/07/2024"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"issue_date": "must be a date formatted as YYYY-MM-DD"}),
		},
		{
			name: "no marks", path: "/v1/admin/certificates/result/S2?term=Term+1", token: adminToken, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "no marks recorded for this student, term and session"}),
		},
	})
}

func Test_reportApi(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, studentToken := app.createUser(t, "student", user.RoleStudent)
	seedSchool(t, app)

	t.Run("attendance", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/reports/attendance?student=s1", studentToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rep report.AttendanceReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		assert.Equal(t, report.AttendanceSummary{Present: 1, Leave: 1, Total: 2}, rep.Summary)
		require.Len(t, rep.Rows, 2)
		assert.Equal(t, "2024-07-02", rep.Rows[0].Text("attendance_date"), "latest first")
	})

	t.Run("result", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/reports/result?term=Term+1", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var results []report.StudentResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "S1", results[0].StudentID)
		assert.Equal(t, 30.0, results[0].Percentage)
		assert.False(t, results[0].Passed)
	})

	t.Run("fees", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/reports/fees", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rep report.FeeReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		assert.Equal(t, 1500.0, rep.Totals.Paid)
	})

	t.Run("pdfs", func(t *testing.T) {
		assertDocument(t, app, http.MethodGet, "/v1/student/reports/attendance.pdf?student=S1", studentToken, nil, "Attendance_S1.pdf")
		assertDocument(t, app, http.MethodGet, "/v1/admin/reports/result.pdf?class=5", adminToken, nil, "ResultReport_5.pdf")
		assertDocument(t, app, http.MethodGet, "/v1/admin/reports/fees.pdf", adminToken, nil, "FeeReport_all.pdf")
	})

	runHTTPTests(t, app, []httpTest{
		{name: "history", path: "/v1/admin/reports/history", token: adminToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "no fees for students", path: "/v1/student/reports/fees", token: studentToken, wantCode: http.StatusNotFound},
		{
			name: "dashboard", path: "/v1/admin/dashboard", token: adminToken, wantCode: http.StatusOK,
			wantData: []byte(`{"students": 3, "teachers": 0, "subjects": 1, "present_today": 0}`),
		},
	})
}
