// Package store defines the data access contract shared by every storage engine.
package store

import (
	"context"
	"regexp"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/sunrise/core/schema"
)

type Operation string

const (
	OpFetch  Operation = "fetch"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Store is the only component allowed to talk to the database.
type Store interface {
	// FetchAll loads every row of each table, ordered by the table's default order field
	// when it has one. One failing table fails the whole call.
	FetchAll(ctx context.Context, tables []string) (map[string][]schema.Row, error)
	InsertRecord(ctx context.Context, table string, values schema.Row) error
	// UpdateRecord overwrites every field of row on the record matched by pkFields.
	UpdateRecord(ctx context.Context, table string, row schema.Row, pkFields []string) error
	// DeleteRecord removes every record matching all filter entries.
	DeleteRecord(ctx context.Context, table string, filter schema.Row) error
}

// CodeUniqueViolation is the SQLSTATE of a duplicate key.
const CodeUniqueViolation = "23505"

// DataAccessError reports a rejected operation; Message is the database's own message.
// Code is its SQLSTATE, when the database gave one.
type DataAccessError struct {
	Table     string
	Operation Operation
	Message   string
	Code      string
}

func (err DataAccessError) Error() string { return err.Message }

func NewDataAccessError(table string, op Operation, err error) error {
	daErr := &DataAccessError{Table: table, Operation: op, Message: "unknown error"}
	if err != nil {
		daErr.Message = err.Error()
		var st interface{ SQLState() string }
		if errors.As(err, &st) {
			daErr.Code = st.SQLState()
		}
	}
	return daErr
}

// AsDataAccessError unwraps err into a *DataAccessError.
func AsDataAccessError(err error) (*DataAccessError, bool) {
	var daErr *DataAccessError
	if errors.As(err, &daErr) {
		return daErr, true
	}
	return nil, false
}

// IsUniqueViolation reports whether err was caused by a duplicate key.
func IsUniqueViolation(err error) bool {
	daErr, ok := AsDataAccessError(err)
	return ok && daErr.Code == CodeUniqueViolation
}

var identRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to place in SQL as a table or column name.
func ValidIdentifier(name string) bool {
	return identRegex.MatchString(name)
}

// CheckIdentifiers validates the table and every field name.
func CheckIdentifiers(table string, op Operation, fields ...string) error {
	if !ValidIdentifier(table) {
		return NewDataAccessError(table, op, errors.Errorf("invalid table name %q", table))
	}
	for _, f := range fields {
		if !ValidIdentifier(f) {
			return NewDataAccessError(table, op, errors.Errorf("invalid column name %q", f))
		}
	}
	return nil
}

// UpdateFilter builds the key filter of an update. Key fields missing from row are skipped;
// an update left without any filter is refused.
func UpdateFilter(table string, row schema.Row, pkFields []string) (schema.Row, error) {
	filter := schema.KeyFilter(row, pkFields)
	if len(filter) == 0 {
		return nil, NewDataAccessError(table, OpUpdate, errors.New("refusing unfiltered update"))
	}
	return filter, nil
}

// TableFetcher loads one table.
type TableFetcher func(ctx context.Context, table string) ([]schema.Row, error)

// FanOut runs fetch for every table concurrently. The first failure cancels the context
// shared by the other fetches and is returned alone, without partial results.
func FanOut(ctx context.Context, tables []string, fetch TableFetcher) (map[string][]schema.Row, error) {
	var (
		mu     sync.Mutex
		result = make(map[string][]schema.Row, len(tables))
	)

	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[string]bool, len(tables))
	for _, table := range tables {
		if seen[table] {
			continue
		}
		seen[table] = true

		table := table
		g.Go(func() error {
			rows, err := fetch(gctx, table)
			if err != nil {
				if _, ok := AsDataAccessError(err); ok {
					return err
				}
				return NewDataAccessError(table, OpFetch, err)
			}
			if rows == nil {
				rows = []schema.Row{}
			}
			mu.Lock()
			result[table] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
