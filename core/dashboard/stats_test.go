package dashboard

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
	inmemdb "github.com/trezcool/sunrise/storage/database/inmem"
)

type brokenTable struct {
	store.Store
	table string
}

func (b brokenTable) FetchAll(ctx context.Context, tables []string) (map[string][]schema.Row, error) {
	return store.FanOut(ctx, tables, func(ctx context.Context, table string) ([]schema.Row, error) {
		if table == b.table {
			return nil, errors.Errorf("relation %q does not exist", table)
		}
		data, err := b.Store.FetchAll(ctx, []string{table})
		return data[table], err
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	st := inmemdb.NewStore(inmemdb.Open(schema.Default))
	insert := func(table string, row schema.Row) {
		require.NoError(t, st.InsertRecord(ctx, table, row))
	}
	insert(schema.TableStudents, schema.Row{"student_id": schema.String("S1"), "name": schema.String("Asha")})
	insert(schema.TableStudents, schema.Row{"student_id": schema.String("S2"), "name": schema.String("Ravi")})
	insert(schema.TableTeachers, schema.Row{"teacher_code": schema.String("T1")})
	insert(schema.TableSubjects, schema.Row{"code": schema.String("MATH")})
	insert(schema.TableAttendance, schema.Row{"student_id": schema.String("S1"), "attendance_date": schema.String("2024-07-01"), "status": schema.String("Present")})
	insert(schema.TableAttendance, schema.Row{"student_id": schema.String("S2"), "attendance_date": schema.String("2024-07-01"), "status": schema.String("absent")})
	insert(schema.TableAttendance, schema.Row{"student_id": schema.String("S2"), "attendance_date": schema.String("2024-06-30"), "status": schema.String("present")})

	got, err := Stats(ctx, st, "2024-07-01")
	require.NoError(t, err)
	assert.Equal(t, Counts{Students: 2, Teachers: 1, Subjects: 1, PresentToday: 1}, got)

	_, err = Stats(ctx, brokenTable{Store: st, table: schema.TableSubjects}, "2024-07-01")
	daErr, ok := store.AsDataAccessError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, schema.TableSubjects, daErr.Table)
}
