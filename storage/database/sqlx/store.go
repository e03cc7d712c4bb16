package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store runs the data access operations on Postgres.
type Store struct {
	db  core.DBExecutor
	reg *schema.Registry
}

var _ store.Store = (*Store)(nil)

func NewStore(db *sqlx.DB, reg *schema.Registry) *Store {
	return &Store{db: db, reg: reg}
}

// dbError returns the database's own message for pq errors.
func dbError(table string, op store.Operation, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &store.DataAccessError{Table: table, Operation: op, Message: pqErr.Message, Code: string(pqErr.Code)}
	}
	return store.NewDataAccessError(table, op, err)
}

func (s *Store) FetchAll(ctx context.Context, tables []string) (map[string][]schema.Row, error) {
	return store.FanOut(ctx, tables, s.fetch)
}

func (s *Store) fetch(ctx context.Context, table string) ([]schema.Row, error) {
	if err := store.CheckIdentifiers(table, store.OpFetch); err != nil {
		return nil, err
	}

	q := psql.Select("*").From(table)
	if field, ok := s.reg.DefaultOrderFieldFor(table); ok {
		q = q.OrderBy(core.DBOrdering{Field: field, Ascending: true}.String())
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, store.NewDataAccessError(table, store.OpFetch, err)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(table, store.OpFetch, err)
	}
	defer func() { _ = rows.Close() }()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, dbError(table, store.OpFetch, err)
	}
	types := make(map[string]string, len(colTypes))
	for _, ct := range colTypes {
		types[ct.Name()] = ct.DatabaseTypeName()
	}

	result := []schema.Row{}
	for rows.Next() {
		m := make(map[string]interface{}, len(colTypes))
		if err = rows.MapScan(m); err != nil {
			return nil, dbError(table, store.OpFetch, err)
		}
		row := make(schema.Row, len(m))
		for field, src := range m {
			row[field] = fromColumn(types[field], src)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, dbError(table, store.OpFetch, err)
	}
	return result, nil
}

// fromColumn converts a scanned value using the column's database type.
func fromColumn(dbType string, src interface{}) schema.Value {
	switch x := src.(type) {
	case []byte:
		if dbType == "NUMERIC" {
			if n, err := strconv.ParseFloat(string(x), 64); err == nil {
				return schema.Number(n)
			}
		}
		return schema.String(string(x))
	case time.Time:
		switch dbType {
		case "TIME":
			return schema.String(x.Format("15:04:05"))
		case "TIMETZ":
			return schema.String(x.Format("15:04:05Z07:00"))
		}
	}
	return schema.FromDB(src)
}

func (s *Store) exec(ctx context.Context, table string, op store.Operation, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return store.NewDataAccessError(table, op, err)
	}
	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return dbError(table, op, err)
	}
	return nil
}

func (s *Store) InsertRecord(ctx context.Context, table string, values schema.Row) error {
	if err := store.CheckIdentifiers(table, store.OpInsert, values.Fields()...); err != nil {
		return err
	}
	if len(values) == 0 {
		return s.exec(ctx, table, store.OpInsert, sq.Expr("INSERT INTO "+table+" DEFAULT VALUES"))
	}
	return s.exec(ctx, table, store.OpInsert, psql.Insert(table).SetMap(values.Raw()))
}

func (s *Store) UpdateRecord(ctx context.Context, table string, row schema.Row, pkFields []string) error {
	if err := store.CheckIdentifiers(table, store.OpUpdate, append(row.Fields(), pkFields...)...); err != nil {
		return err
	}
	filter, err := store.UpdateFilter(table, row, pkFields)
	if err != nil {
		return err
	}
	q := psql.Update(table).SetMap(row.Raw()).Where(sq.Eq(filter.Raw()))
	return s.exec(ctx, table, store.OpUpdate, q)
}

func (s *Store) DeleteRecord(ctx context.Context, table string, filter schema.Row) error {
	if err := store.CheckIdentifiers(table, store.OpDelete, filter.Fields()...); err != nil {
		return err
	}
	q := psql.Delete(table)
	if len(filter) > 0 {
		q = q.Where(sq.Eq(filter.Raw()))
	}
	return s.exec(ctx, table, store.OpDelete, q)
}
