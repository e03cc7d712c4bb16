package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

var valueCmp = cmp.Comparer(func(a, b schema.Value) bool { return a.Equal(b) })

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(Open(schema.Default))
}

func fetch(t *testing.T, s *Store, table string) []schema.Row {
	t.Helper()
	data, err := s.FetchAll(context.Background(), []string{table})
	require.NoError(t, err)
	return data[table]
}

func TestStore_updateRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.InsertRecord(ctx, schema.TableStudents, schema.Row{
		"student_id": schema.String("S1"),
		"name":       schema.String("Asha"),
		"class_name": schema.String("5"),
	}))
	require.NoError(t, s.InsertRecord(ctx, schema.TableStudents, schema.Row{
		"student_id": schema.String("S2"),
		"name":       schema.String("Ravi"),
		"class_name": schema.String("5"),
	}))

	rows := fetch(t, s, schema.TableStudents)
	require.Len(t, rows, 2)

	edited := rows[0].Clone()
	edited["name"] = schema.String("Asha K")
	require.NoError(t, s.UpdateRecord(ctx, schema.TableStudents, edited, schema.Default.PrimaryKeysFor(schema.TableStudents)))

	got := map[string]string{}
	for _, r := range fetch(t, s, schema.TableStudents) {
		got[r.Text("student_id")] = r.Text("name")
	}
	assert.Equal(t, map[string]string{"S1": "Asha K", "S2": "Ravi"}, got)

	err := s.UpdateRecord(ctx, schema.TableStudents, schema.Row{"name": schema.String("all")}, []string{"student_id"})
	daErr, ok := store.AsDataAccessError(err)
	require.True(t, ok)
	assert.Equal(t, store.OpUpdate, daErr.Operation)
}

func TestStore_deleteRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, day := range []string{"2024-07-01", "2024-07-02"} {
		require.NoError(t, s.InsertRecord(ctx, schema.TableAttendance, schema.Row{
			"student_id":      schema.String("S1"),
			"attendance_date": schema.String(day),
			"status":          schema.String("present"),
		}))
	}

	require.NoError(t, s.DeleteRecord(ctx, schema.TableAttendance, schema.Row{
		"student_id":      schema.String("S1"),
		"attendance_date": schema.String("2024-07-01"),
	}))

	rows := fetch(t, s, schema.TableAttendance)
	require.Len(t, rows, 1)
	d, ok := rows[0].Time("attendance_date")
	require.True(t, ok)
	assert.Equal(t, "2024-07-02", d.Format("2006-01-02"))
}

func TestStore_insertRecord(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		rows    []schema.Row
		wantErr string
		wantDup bool
		want    []schema.Row
	}{
		{
			name:  "null stays null",
			table: schema.TableSubjects,
			rows: []schema.Row{
				schema.Row{"code": schema.String("MATH"), "name": schema.String("Maths"), "description": schema.String("")}.NullifyEmpty(),
			},
			want: []schema.Row{{"code": schema.String("MATH"), "name": schema.String("Maths"), "description": schema.Null()}},
		},
		{
			name:  "duplicate composite key",
			table: schema.TableAttendance,
			rows: []schema.Row{
				{"student_id": schema.String("S1"), "attendance_date": schema.String("2024-07-01"), "created_at": schema.Null()},
				{"student_id": schema.String("S1"), "attendance_date": schema.String("2024-07-01"), "created_at": schema.Null()},
			},
			wantErr: `duplicate key value violates unique constraint "attendance_pkey"`,
			wantDup: true,
			want: []schema.Row{
				{"student_id": schema.String("S1"), "attendance_date": schema.String("2024-07-01"), "created_at": schema.Null()},
			},
		},
		{
			name:    "missing key",
			table:   schema.TableSubjects,
			rows:    []schema.Row{{"name": schema.String("Art")}},
			wantErr: `null value in column "code" of relation "subjects" violates not-null constraint`,
			want:    []schema.Row{},
		},
		{
			name:  "serial key",
			table: schema.TableExams,
			rows: []schema.Row{
				{"name": schema.String("Unit 1"), "created_at": schema.Null()},
				{"name": schema.String("Unit 2"), "created_at": schema.Null()},
			},
			want: []schema.Row{
				{"exam_id": schema.Number(1), "name": schema.String("Unit 1"), "created_at": schema.Null()},
				{"exam_id": schema.Number(2), "name": schema.String("Unit 2"), "created_at": schema.Null()},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			var err error
			for _, r := range tt.rows {
				if err = s.InsertRecord(ctx, tt.table, r); err != nil {
					break
				}
			}
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Equal(t, tt.wantDup, store.IsUniqueViolation(err))
			} else {
				require.NoError(t, err)
			}
			if diff := cmp.Diff(tt.want, fetch(t, s, tt.table), valueCmp); diff != "" {
				t.Errorf("FetchAll() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_fetchAll(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, isbn := range []string{"3", "1", "2"} {
		require.NoError(t, s.InsertRecord(ctx, schema.TableLibraryBooks, schema.Row{
			"isbn":       schema.String(isbn),
			"added_date": schema.Date(time.Date(2024, 1, len(isbn)+int(isbn[0]-'0'), 0, 0, 0, 0, time.UTC)),
		}))
	}

	rows := fetch(t, s, schema.TableLibraryBooks)
	var isbns []string
	for _, r := range rows {
		isbns = append(isbns, r.Text("isbn"))
	}
	assert.Equal(t, []string{"1", "2", "3"}, isbns, "ordered by added_date")

	_, err := s.FetchAll(ctx, []string{schema.TableStudents, "ghosts"})
	require.Error(t, err)
	assert.Equal(t, `relation "ghosts" does not exist`, err.Error())

	_, err = s.FetchAll(ctx, []string{"students;--"})
	assert.Error(t, err)
}
