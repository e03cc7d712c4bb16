package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/sunrise/apps/api/echo"
	"github.com/trezcool/sunrise/core/attendance"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/user"
)

func Test_scanApi(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	seedStudents(t, app)

	code, err := attendance.Encode(attendance.Payload{StudentID: "S2", Name: "asha", Class: "5", Session: "2024-25"})
	require.NoError(t, err)

	stage := func(t *testing.T) ScanResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/attendance/scan", adminToken,
			marshallObj(t, ScanRequest{Payload: code}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp ScanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}
	confirm := func(token string) []byte {
		return marshallObj(t, ConfirmScanRequest{Token: token})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "not a code", method: http.MethodPost, path: "/v1/admin/attendance/scan", token: adminToken,
			body: marshallObj(t, ScanRequest{Payload: "hello"}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "Invalid QR code: not an attendance code"}),
		},
		{
			name: "wrong type", method: http.MethodPost, path: "/v1/admin/attendance/scan", token: adminToken,
			body: marshallObj(t, ScanRequest{Payload: `{"type": "book", "student_id": "S2"}`}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "Invalid QR code: wrong type"}),
		},
		{
			name: "teachers cannot scan", method: http.MethodPost, path: "/v1/teacher/attendance/scan", token: teacherToken,
			body: marshallObj(t, ScanRequest{Payload: code}), wantCode: http.StatusNotFound,
		},
	})

	staged := stage(t)
	assert.NotEmpty(t, staged.Token)
	assert.Equal(t, "asha (S2)", staged.Label)
	assert.Empty(t, app.rows(t, schema.TableAttendance), "staging writes nothing")

	runHTTPTests(t, app, []httpTest{
		{
			name: "confirmed", method: http.MethodPost, path: "/v1/admin/attendance/scan/confirm", token: adminToken,
			body: confirm(staged.Token), wantCode: http.StatusCreated,
			wantData: marshallObj(t, succeeded("Attendance marked PRESENT for asha (S2)")),
		},
		{
			name: "token used", method: http.MethodPost, path: "/v1/admin/attendance/scan/confirm", token: adminToken,
			body: confirm(staged.Token), wantCode: http.StatusGone,
			wantData: marshallObj(t, httpErr{Error: "scan expired or already confirmed, please scan again"}),
		},
		{
			name: "same day twice", method: http.MethodPost, path: "/v1/admin/attendance/scan/confirm", token: adminToken,
			body: confirm(stage(t).Token), wantCode: http.StatusUnprocessableEntity,
			wantData: marshallObj(t, httpErr{Error: `Insert error: duplicate key value violates unique constraint "attendance_pkey"`}),
		},
	})

	rows := app.rows(t, schema.TableAttendance)
	require.Len(t, rows, 1)
	assert.Equal(t, "S2", rows[0].Text("student_id"))
	assert.Equal(t, "present", rows[0].Text("status"))
	assert.Equal(t, "QR scan by admin", rows[0].Text("remarks"))
}
