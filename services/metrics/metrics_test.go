package metricsvc

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core/schema"
	inmemdb "github.com/trezcool/sunrise/storage/database/inmem"
)

func TestInstrumentStore(t *testing.T) {
	ctx := context.Background()
	m := New()
	st := InstrumentStore(inmemdb.NewStore(inmemdb.Open(schema.Default)), m)

	require.NoError(t, st.InsertRecord(ctx, schema.TableSubjects, schema.Row{"code": schema.String("MATH")}))
	assert.Error(t, st.InsertRecord(ctx, schema.TableSubjects, schema.Row{"code": schema.String("MATH")}))
	_, err := st.FetchAll(ctx, []string{schema.TableSubjects, schema.TableClasses})
	require.NoError(t, err)
	require.NoError(t, st.DeleteRecord(ctx, schema.TableSubjects, schema.Row{"code": schema.String("MATH")}))

	tests := []struct {
		table, op, outcome string
		want               float64
	}{
		{schema.TableSubjects, "insert", "ok", 1},
		{schema.TableSubjects, "insert", "error", 1},
		{schema.TableSubjects, "fetch", "ok", 1},
		{schema.TableClasses, "fetch", "ok", 1},
		{schema.TableSubjects, "delete", "ok", 1},
		{schema.TableSubjects, "update", "ok", 0},
	}
	for _, tt := range tests {
		t.Run(tt.table+"/"+tt.op+"/"+tt.outcome, func(t *testing.T) {
			got := testutil.ToFloat64(m.StoreOps.WithLabelValues(tt.table, tt.op, tt.outcome))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.HTTPRequests.WithLabelValues("GET", "/v1/tables/:table", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `sunrise_http_requests_total{code="200",method="GET",route="/v1/tables/:table"} 1`)
}
