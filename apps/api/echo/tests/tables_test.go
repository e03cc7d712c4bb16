package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core/engine"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
)

func seedStudents(t *testing.T, app *testApp) {
	t.Helper()
	for _, s := range []struct{ id, name, email string }{
		{"S1", "Ravi", "ravi@school.in"},
		{"S2", "asha", ""},
		{"S3", "Meera", "meera@school.in"},
	} {
		row := schema.Row{"student_id": schema.String(s.id), "name": schema.String(s.name), "class_name": schema.String("5")}
		if s.email != "" {
			row["email"] = schema.String(s.email)
		}
		app.insert(t, schema.TableStudents, row)
	}
}

func decodePage(t *testing.T, body []byte) engine.Page {
	t.Helper()
	var p engine.Page
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func pageNames(p engine.Page) []string {
	names := make([]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		names = append(names, r.Values.Text("name"))
	}
	return names
}

func Test_tableApi_list(t *testing.T) {
	app := setup(t)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	_, studentToken := app.createUser(t, "student", user.RoleStudent)

	tests := []struct {
		name  string
		path  string
		token string
		want  []string
	}{
		{name: "teacher", path: "/v1/teacher/tables", token: teacherToken, want: []string{
			"students", "subjects", "classes", "class_schedules", "attendance",
			"exam_subject_marks", "co_scholastic_grades", "library_books", "student_subjects",
		}},
		{name: "student", path: "/v1/student/tables", token: studentToken, want: []string{
			"profiles", "students", "subjects", "attendance", "exam_subject_marks",
			"fees", "student_fee_records", "library_books",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var tables []schema.TableDescriptor
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
			got := make([]string, 0, len(tables))
			for _, tbl := range tables {
				got = append(got, tbl.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_tableApi_gate(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)

	runHTTPTests(t, app, []httpTest{
		{name: "no session", path: "/v1/admin/tables", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "role mismatch", path: "/v1/admin/tables", token: teacherToken, wantCode: http.StatusForbidden, wantData: marshallObj(t, errNotAllowed)},
		{name: "admin in teacher area", path: "/v1/teacher/tables", token: adminToken, wantCode: http.StatusForbidden, wantData: marshallObj(t, errNotAllowed)},
		{
			name: "table not enabled", path: "/v1/teacher/tables/fees", token: teacherToken, wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "table not enabled for this role"}),
		},
		{name: "admin only report", path: "/v1/teacher/reports/fees", token: teacherToken, wantCode: http.StatusNotFound},
	})
}

func Test_tableApi_page(t *testing.T) {
	app := setup(t)
	_, token := app.createUser(t, "admin", user.RoleAdmin)
	seedStudents(t, app)

	tests := []struct {
		name      string
		query     string
		wantNames []string
		wantCount int
	}{
		{name: "fetch order", query: "", wantNames: []string{"Ravi", "asha", "Meera"}, wantCount: 1},
		{name: "sort asc", query: "?sort=name", wantNames: []string{"Meera", "Ravi", "asha"}, wantCount: 1},
		{name: "sort desc", query: "?sort=name&dir=desc", wantNames: []string{"asha", "Ravi", "Meera"}, wantCount: 1},
		{name: "ordering param", query: "?ordering=-name", wantNames: []string{"asha", "Ravi", "Meera"}, wantCount: 1},
		{name: "filter", query: "?filter=%20EER%20", wantNames: []string{"Meera"}, wantCount: 1},
		{name: "paginate", query: "?size=5&page=0", wantNames: []string{"Ravi", "asha", "Meera"}, wantCount: 1},
		{name: "page clamped", query: "?size=5&page=7", wantNames: []string{"Ravi", "asha", "Meera"}, wantCount: 1},
		{name: "no match", query: "?filter=zzz", wantNames: []string{}, wantCount: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/admin/tables/students"+tt.query, token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			p := decodePage(t, rec.Body.Bytes())
			assert.Equal(t, engine.StateReady, p.State)
			assert.Equal(t, 3, p.Total)
			assert.Equal(t, tt.wantNames, pageNames(p))
			assert.Equal(t, tt.wantCount, p.PageCount)
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "bad page size", path: "/v1/admin/tables/students?size=7", token: token, wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "page size must be one of 5, 10, 20, 50 or 100"}),
		},
		{
			name: "unknown sort column", path: "/v1/admin/tables/students?sort=password", token: token, wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "unknown or unsortable column"}),
		},
	})
}

func Test_tableApi_hidesPasswordHash(t *testing.T) {
	app := setup(t)
	_, token := app.createUser(t, "admin", user.RoleAdmin)

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/tables/users", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	p := decodePage(t, rec.Body.Bytes())
	require.Len(t, p.Rows, 1)
	assert.Equal(t, "ADMIN", p.Rows[0].Cells["role"].Text)
}

func Test_tableApi_add(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	_, studentToken := app.createUser(t, "student", user.RoleStudent)
	seedStudents(t, app)

	runHTTPTests(t, app, []httpTest{
		{
			name: "student may not add", method: http.MethodPost, path: "/v1/student/tables/students", token: studentToken,
			body: []byte(`{"student_id": "S9", "name": "Kiran"}`), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "email taken (case-insensitive)", method: http.MethodPost, path: "/v1/admin/tables/students", token: adminToken,
			body:     []byte(`{"student_id": "S9", "name": "Kiran", "email": " RAVI@school.in "}`),
			wantCode: http.StatusUnprocessableEntity, wantData: marshallObj(t, httpErr{Error: engine.MsgStudentEmailTaken}),
		},
		{
			name: "duplicate key", method: http.MethodPost, path: "/v1/admin/tables/students", token: adminToken,
			body:     []byte(`{"student_id": "S1", "name": "Kiran"}`),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marshallObj(t, httpErr{Error: `Insert error: duplicate key value violates unique constraint "students_pkey"`}),
		},
		{
			name: "student added", method: http.MethodPost, path: "/v1/admin/tables/students", token: adminToken,
			body: []byte(`{"student_id": "S9", "name": "Kiran", "phone_number": ""}`), wantCode: http.StatusCreated,
			wantData: marshallObj(t, succeeded(engine.MsgStudentAdded)),
		},
		{
			name: "teacher adds a subject", method: http.MethodPost, path: "/v1/teacher/tables/subjects", token: teacherToken,
			body: []byte(`{"code": "SCI", "name": "Science"}`), wantCode: http.StatusCreated,
			wantData: marshallObj(t, succeeded(engine.MsgAdded)),
		},
		{
			name: "admin creates a login", method: http.MethodPost, path: "/v1/admin/tables/users", token: adminToken,
			body: []byte(`{"username": "kiran", "password": "secret1", "role": "student"}`), wantCode: http.StatusCreated,
			wantData: marshallObj(t, succeeded(engine.MsgUserCreated)),
		},
	})

	var added schema.Row
	for _, r := range app.rows(t, schema.TableStudents) {
		if r.Text("student_id") == "S9" {
			added = r
		}
	}
	require.NotNil(t, added)
	assert.Equal(t, "Kiran", added.Text("name"))
	assert.True(t, added.Get("phone_number").IsNull(), "empty strings are stored as null")
}

func Test_tableApi_save(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	_, studentToken := app.createUser(t, "student", user.RoleStudent)
	seedStudents(t, app)

	runHTTPTests(t, app, []httpTest{
		{
			name: "student may not edit", method: http.MethodPut, path: "/v1/student/tables/students", token: studentToken,
			body: []byte(`{"student_id": "S1", "name": "R"}`), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "unknown record", method: http.MethodPut, path: "/v1/teacher/tables/students", token: teacherToken,
			body: []byte(`{"student_id": "S404", "name": "R"}`), wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "record not found"}),
		},
		{
			name: "missing key", method: http.MethodPut, path: "/v1/teacher/tables/students", token: teacherToken,
			body: []byte(`{"name": "R"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "record is missing a primary key value"}),
		},
		{
			name: "teacher saves", method: http.MethodPut, path: "/v1/teacher/tables/students", token: teacherToken,
			body: []byte(`{"student_id": "S2", "name": "Asha K", "village": "Danapur"}`), wantCode: http.StatusOK,
			wantData: marshallObj(t, succeeded(engine.MsgUpdated)),
		},
		{
			name: "bad column is reported", method: http.MethodPut, path: "/v1/admin/tables/students", token: adminToken,
			body: []byte(`{"student_id": "S3", "Bad Column": "x"}`), wantCode: http.StatusUnprocessableEntity,
		},
	})

	for _, r := range app.rows(t, schema.TableStudents) {
		if r.Text("student_id") == "S2" {
			assert.Equal(t, "Asha K", r.Text("name"))
			assert.Equal(t, "Danapur", r.Text("village"))
			assert.Equal(t, "5", r.Text("class_name"), "fields missing from the body are kept")
		}
	}
}

func Test_tableApi_destroy(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	seedStudents(t, app)

	runHTTPTests(t, app, []httpTest{
		{
			name: "admins only", method: http.MethodDelete, path: "/v1/teacher/tables/students", token: teacherToken,
			body: []byte(`{"student_id": "S1"}`), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "missing key", method: http.MethodDelete, path: "/v1/admin/tables/students", token: adminToken,
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "record is missing a primary key value"}),
		},
		{
			name: "deleted", method: http.MethodDelete, path: "/v1/admin/tables/students", token: adminToken,
			body: []byte(`{"student_id": "S1"}`), wantCode: http.StatusOK, wantData: marshallObj(t, succeeded(engine.MsgDeleted)),
		},
	})
	assert.Len(t, app.rows(t, schema.TableStudents), 2)
}

func Test_tableApi_details(t *testing.T) {
	app := setup(t)
	_, token := app.createUser(t, "teacher", user.RoleTeacher)
	seedStudents(t, app)

	req, rec := newAuthRequest(http.MethodPost, "/v1/teacher/tables/students/details.pdf", token, []byte(`{"student_id": "S3"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Details_students.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

// failingStore fails every fetch of one table.
type failingStore struct {
	store.Store
	table string
}

func (s failingStore) FetchAll(ctx context.Context, tables []string) (map[string][]schema.Row, error) {
	for _, t := range tables {
		if t == s.table {
			return nil, store.NewDataAccessError(t, store.OpFetch, errors.New("connection refused"))
		}
	}
	return s.Store.FetchAll(ctx, tables)
}

func Test_tableApi_fetchError(t *testing.T) {
	app := setup(t, func(st store.Store) store.Store { return failingStore{Store: st, table: schema.TableStudents} })
	_, token := app.createUser(t, "admin", user.RoleAdmin)

	runHTTPTests(t, app, []httpTest{
		{
			name: "retry offered", path: "/v1/admin/tables/students", token: token, wantCode: http.StatusBadGateway,
			wantData: []byte(`{"error": "connection refused", "retry": true}`),
		},
		{
			name: "dashboard fails as a whole", path: "/v1/admin/dashboard", token: token, wantCode: http.StatusBadGateway,
			wantData: []byte(`{"error": "connection refused", "retry": true}`),
		},
		{name: "other tables load", path: "/v1/admin/tables/subjects", token: token, wantCode: http.StatusOK},
	})

	got := testutil.ToFloat64(app.metrics.HTTPRequests.WithLabelValues("GET", "/v1/admin/tables/:table", "502"))
	assert.Equal(t, float64(1), got)
}
