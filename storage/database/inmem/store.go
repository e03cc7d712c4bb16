package inmemdb

import (
	"context"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

type Store struct {
	db *DB
}

var _ store.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) FetchAll(ctx context.Context, tables []string) (map[string][]schema.Row, error) {
	return store.FanOut(ctx, tables, func(ctx context.Context, table string) ([]schema.Row, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := store.CheckIdentifiers(table, store.OpFetch); err != nil {
			return nil, err
		}
		return s.db.query(table)
	})
}

func (s *Store) InsertRecord(ctx context.Context, table string, values schema.Row) error {
	if err := store.CheckIdentifiers(table, store.OpInsert, values.Fields()...); err != nil {
		return err
	}
	if _, err := s.db.insert(table, values); err != nil {
		return store.NewDataAccessError(table, store.OpInsert, err)
	}
	return nil
}

func (s *Store) UpdateRecord(ctx context.Context, table string, row schema.Row, pkFields []string) error {
	if err := store.CheckIdentifiers(table, store.OpUpdate, append(row.Fields(), pkFields...)...); err != nil {
		return err
	}
	filter, err := store.UpdateFilter(table, row, pkFields)
	if err != nil {
		return err
	}
	if err = s.db.update(table, row, filter); err != nil {
		return store.NewDataAccessError(table, store.OpUpdate, err)
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, table string, filter schema.Row) error {
	if err := store.CheckIdentifiers(table, store.OpDelete, filter.Fields()...); err != nil {
		return err
	}
	if err := s.db.delete(table, filter); err != nil {
		return store.NewDataAccessError(table, store.OpDelete, err)
	}
	return nil
}
