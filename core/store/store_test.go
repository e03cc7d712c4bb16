package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core/schema"
)

func TestFanOut(t *testing.T) {
	t.Run("all tables", func(t *testing.T) {
		var calls int32
		got, err := FanOut(context.Background(), []string{"students", "teachers", "students"},
			func(ctx context.Context, table string) ([]schema.Row, error) {
				atomic.AddInt32(&calls, 1)
				if table == "teachers" {
					return nil, nil
				}
				return []schema.Row{{"student_id": schema.String("S1")}}, nil
			})
		require.NoError(t, err)
		assert.EqualValues(t, 2, calls, "duplicate tables are fetched once")
		assert.Len(t, got["students"], 1)
		assert.NotNil(t, got["teachers"])
		assert.Empty(t, got["teachers"])
	})

	t.Run("first failure cancels siblings", func(t *testing.T) {
		var cancelled int32
		got, err := FanOut(context.Background(), []string{"students", "broken", "subjects"},
			func(ctx context.Context, table string) ([]schema.Row, error) {
				if table == "broken" {
					return nil, errors.New(`relation "broken" does not exist`)
				}
				select {
				case <-ctx.Done():
					atomic.AddInt32(&cancelled, 1)
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return []schema.Row{}, nil
				}
			})
		require.Error(t, err)
		assert.Nil(t, got, "no partial map")
		assert.EqualValues(t, 2, cancelled)

		daErr, ok := AsDataAccessError(err)
		require.True(t, ok)
		assert.Equal(t, "broken", daErr.Table)
		assert.Equal(t, OpFetch, daErr.Operation)
		assert.Equal(t, `relation "broken" does not exist`, daErr.Error())
	})
}

func TestCheckIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		fields  []string
		wantErr bool
	}{
		{name: "valid", table: "exam_subject_marks", fields: []string{"student_id", "term_name"}},
		{name: "upper table", table: "Students", wantErr: true},
		{name: "injected table", table: "students; drop table users", wantErr: true},
		{name: "quoted column", table: "students", fields: []string{`name"`}, wantErr: true},
		{name: "leading digit", table: "students", fields: []string{"1st"}, wantErr: true},
		{name: "empty", table: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIdentifiers(tt.table, OpInsert, tt.fields...)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckIdentifiers() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateFilter(t *testing.T) {
	row := schema.Row{"student_id": schema.String("S1"), "name": schema.String("Asha")}

	filter, err := UpdateFilter("attendance", row, []string{"student_id", "attendance_date"})
	require.NoError(t, err)
	assert.Equal(t, schema.Row{"student_id": schema.String("S1")}, filter)

	_, err = UpdateFilter("attendance", schema.Row{"name": schema.String("x")}, []string{"student_id"})
	daErr, ok := AsDataAccessError(err)
	require.True(t, ok)
	assert.Equal(t, OpUpdate, daErr.Operation)
	assert.Equal(t, "refusing unfiltered update", daErr.Message)
}
