package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/trezcool/sunrise/apps/api/echo"
	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
	logsvc "github.com/trezcool/sunrise/services/logger"
	metricsvc "github.com/trezcool/sunrise/services/metrics"
	inmemdb "github.com/trezcool/sunrise/storage/database/inmem"
	"github.com/trezcool/sunrise/tests"
)

var (
	conf = &core.Config{
		AppName:   "Sunrise",
		SecretKey: "test-secret-key",
		TestMode:  true,
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
			DisableReqLogs:     true,
		},
		School: core.SchoolConfig{
			Name:      "Sunrise Public School",
			Address:   "Main Road, Patna",
			Session:   "2024-25",
			PublicURL: "https://sunrise.example",
			Timezone:  "Asia/Kolkata",
		},
	}

	errMissingToken = redirectErr{Error: "missing or malformed jwt", Redirect: "/login"}
	errNotAllowed   = redirectErr{Error: "permission denied", Redirect: "/"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type testApp struct {
	Server
	store   store.Store
	usrRepo user.Repository
	metrics *metricsvc.Metrics
}

// setup starts a server over an empty in-memory database.
// wrap, if given, decorates the store seen by the server.
func setup(t *testing.T, wrap ...func(store.Store) store.Store) *testApp {
	t.Helper()
	db := inmemdb.Open(schema.Default)
	var st store.Store = inmemdb.NewStore(db)
	usrRepo := inmemdb.NewUserRepository(db)

	validate, translator := testutil.NewValidator(t)
	served := st
	for _, w := range wrap {
		served = w(served)
	}
	metrics := metricsvc.New()

	app := NewServer(Options{
		Conf:       conf,
		Logger:     logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		Store:      served,
		UserSvc:    user.NewService(usrRepo, validate),
		Validate:   validate,
		Translator: translator,
		Metrics:    metrics,
	})
	return &testApp{Server: app, store: st, usrRepo: usrRepo, metrics: metrics}
}

func (app *testApp) insert(t *testing.T, table string, row schema.Row) {
	t.Helper()
	require.NoError(t, app.store.InsertRecord(context.Background(), table, row))
}

func (app *testApp) rows(t *testing.T, table string) []schema.Row {
	t.Helper()
	data, err := app.store.FetchAll(context.Background(), []string{table})
	require.NoError(t, err)
	return data[table]
}

func (app *testApp) createUser(t *testing.T, uname string, role user.Role) (user.User, string) {
	t.Helper()
	usr := testutil.CreateUser(t, app.usrRepo, "", uname, "", "secret", role)
	return usr, getToken(t, usr)
}

type httpErr struct {
	Error string `json:"error"`
}

type redirectErr struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

type success struct {
	Success        string `json:"success"`
	Severity       string `json:"severity"`
	DismissAfterMS int    `json:"dismiss_after_ms"`
}

func succeeded(msg string) success {
	return success{Success: msg, Severity: "success", DismissAfterMS: 3000}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(conf, usr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
