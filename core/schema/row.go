package schema

import (
	"sort"
	"time"
)

// Row is one record of a table, keyed by column name.
type Row map[string]Value

// Has reports whether the field is present, even if null.
func (r Row) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Get returns the field's value, null if absent.
func (r Row) Get(field string) Value {
	return r[field]
}

// Text returns the raw text of the field, "" if absent or null.
func (r Row) Text(field string) string {
	return r[field].Text()
}

// Num returns the numeric reading of the field, 0 if it has none.
func (r Row) Num(field string) float64 {
	n, _ := r[field].AsNumber()
	return n
}

// Time returns the time reading of the field.
func (r Row) Time(field string) (time.Time, bool) {
	return r[field].AsTime()
}

// Clone returns a shallow copy.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Fields returns the field names in lexical order.
func (r Row) Fields() []string {
	fields := make([]string, 0, len(r))
	for k := range r {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Matches reports whether every filter entry equals the row's value.
func (r Row) Matches(filter Row) bool {
	for field, want := range filter {
		got, ok := r[field]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// NullifyEmpty returns a copy where empty strings became null.
func (r Row) NullifyEmpty() Row {
	c := r.Clone()
	for k, v := range c {
		if v.Kind() == KindString && v.StringVal() == "" {
			c[k] = Null()
		}
	}
	return c
}

// Raw returns the row as database/sql arguments keyed by column.
func (r Row) Raw() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for k, v := range r {
		m[k] = v.Raw()
	}
	return m
}

// RowFromDB converts a scanned map into a Row.
func RowFromDB(m map[string]interface{}) Row {
	r := make(Row, len(m))
	for k, v := range m {
		r[k] = FromDB(v)
	}
	return r
}

// KeyFilter builds the equality filter identifying row by pkFields.
// Fields absent from the row are left out.
func KeyFilter(row Row, pkFields []string) Row {
	filter := make(Row, len(pkFields))
	for _, pk := range pkFields {
		if v, ok := row[pk]; ok {
			filter[pk] = v
		}
	}
	return filter
}
