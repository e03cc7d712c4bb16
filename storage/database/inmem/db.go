package inmemdb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

// serial key of each table whose primary key is generated on insert
var serialKeys = map[string]string{
	schema.TableUsers:             "id",
	schema.TableExams:             "exam_id",
	schema.TableFees:              "fee_id",
	schema.TableStudentFeeRecords: "record_id",
	schema.TableNotifications:     "notification_id",
}

// unique constraints besides primary keys
var uniqueKeys = map[string][]string{
	schema.TableUsers:    {"username"},
	schema.TableProfiles: {"username"},
}

type (
	DB struct {
		reg     *schema.Registry
		tables  map[string][]schema.Row
		serials map[string]int
		mutex   sync.RWMutex
	}

	pgError struct {
		code    string
		message string
	}
)

func (e pgError) Error() string    { return e.message }
func (e pgError) SQLState() string { return e.code }

func errf(format string, args ...interface{}) error {
	return pgError{message: fmt.Sprintf(format, args...)}
}

func uniqueViolation(constraint string) error {
	return pgError{
		code:    store.CodeUniqueViolation,
		message: fmt.Sprintf("duplicate key value violates unique constraint %q", constraint),
	}
}

// Open returns an empty database holding every table of reg.
func Open(reg *schema.Registry) *DB {
	db := &DB{reg: reg}
	db.Reset()
	return db
}

// Reset drops every row.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.tables = make(map[string][]schema.Row, len(db.reg.Tables()))
	db.serials = make(map[string]int)
	for _, name := range db.reg.Tables() {
		db.tables[name] = []schema.Row{}
	}
}

// Close is a no-op; it mirrors *sqlx.DB.
func (db *DB) Close() error { return nil }

func (db *DB) table(name string) ([]schema.Row, error) {
	rows, ok := db.tables[name]
	if !ok {
		return nil, errf("relation %q does not exist", name)
	}
	return rows, nil
}

// query returns copies of the table rows ordered by the default order field.
func (db *DB) query(name string) ([]schema.Row, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	rows, err := db.table(name)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	if field, ok := db.reg.DefaultOrderFieldFor(name); ok {
		sort.SliceStable(out, func(i, j int) bool {
			return schema.Compare(out[i].Get(field), out[j].Get(field)) < 0
		})
	}
	return out, nil
}

// coerce converts date-like strings of date columns, as the database does on write.
func (db *DB) coerce(name string, row schema.Row) schema.Row {
	out := row.Clone()
	for _, c := range db.reg.ColumnsFor(name) {
		if c.Format.Kind != schema.FormatDate && c.Format.Kind != schema.FormatDateTime {
			continue
		}
		v, ok := out[c.Field]
		if !ok || v.Kind() != schema.KindString {
			continue
		}
		if t, ok := schema.ParseTime(v.StringVal()); ok {
			out[c.Field] = schema.Date(t)
		}
	}
	return out
}

// insert stores row and returns the stored copy, generated keys included.
func (db *DB) insert(name string, row schema.Row) (schema.Row, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rows, err := db.table(name)
	if err != nil {
		return nil, err
	}
	row = db.coerce(name, row)

	if key, ok := serialKeys[name]; ok && row.Get(key).IsNull() {
		db.serials[name]++
		row[key] = schema.Number(float64(db.serials[name]))
	} else if ok {
		if n := int(row.Num(key)); n > db.serials[name] {
			db.serials[name] = n
		}
	}
	if name == schema.TableProfiles && row.Get("id").IsNull() {
		row["id"] = schema.String(uuid.NewString())
	}
	if _, ok := row["created_at"]; !ok && db.tracksCreation(name) {
		row["created_at"] = schema.Date(core.NowFunc().UTC())
	}

	pk := db.reg.PrimaryKeysFor(name)
	for _, f := range pk {
		if row.Get(f).IsNull() {
			return nil, errf("null value in column %q of relation %q violates not-null constraint", f, name)
		}
	}
	if err = checkUnique(name, rows, row, pk, -1); err != nil {
		return nil, err
	}

	db.tables[name] = append(rows, row)
	return row.Clone(), nil
}

// update overwrites the fields of row on every record matching filter.
func (db *DB) update(name string, row, filter schema.Row) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rows, err := db.table(name)
	if err != nil {
		return err
	}
	row = db.coerce(name, row)
	pk := db.reg.PrimaryKeysFor(name)

	updated := make([]schema.Row, len(rows))
	copy(updated, rows)
	for i, r := range rows {
		if !r.Matches(filter) {
			continue
		}
		next := r.Clone()
		for k, v := range row {
			next[k] = v
		}
		if err = checkUnique(name, updated, next, pk, i); err != nil {
			return err
		}
		updated[i] = next
	}
	db.tables[name] = updated
	return nil
}

// delete removes every record matching filter; an empty filter matches all.
func (db *DB) delete(name string, filter schema.Row) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rows, err := db.table(name)
	if err != nil {
		return err
	}
	kept := make([]schema.Row, 0, len(rows))
	for _, r := range rows {
		if !r.Matches(filter) {
			kept = append(kept, r)
		}
	}
	db.tables[name] = kept
	return nil
}

// tracksCreation reports whether the table has a created_at column.
func (db *DB) tracksCreation(name string) bool {
	if order, ok := db.reg.DefaultOrderFieldFor(name); ok && order == "created_at" {
		return true
	}
	for _, c := range db.reg.ColumnsFor(name) {
		if c.Field == "created_at" {
			return true
		}
	}
	return false
}

// checkUnique fails when row collides with any record other than rows[self].
func checkUnique(name string, rows []schema.Row, row schema.Row, pk []string, self int) error {
	pkFilter := schema.KeyFilter(row, pk)
	for i, r := range rows {
		if i == self {
			continue
		}
		if len(pkFilter) == len(pk) && r.Matches(pkFilter) {
			return uniqueViolation(name + "_pkey")
		}
		for _, f := range uniqueKeys[name] {
			if v := row.Get(f); !v.IsNull() && r.Get(f).Equal(v) {
				return uniqueViolation(name + "_" + f + "_key")
			}
		}
	}
	return nil
}
