package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindDate
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

const dateLayout = "2006-01-02"

var timeLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// Value is one cell of a Row: null, string, number, bool or date.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
}

func Null() Value                 { return Value{} }
func String(s string) Value       { return Value{kind: KindString, str: s} }
func Number(n float64) Value      { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value      { return Value{kind: KindDate, t: t} }
func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsEmpty() bool     { return v.kind == KindNull || (v.kind == KindString && v.str == "") }
func (v Value) Bool() bool        { return v.b }
func (v Value) Number() float64   { return v.num }
func (v Value) Time() time.Time   { return v.t }
func (v Value) StringVal() string { return v.str }

// dateOnly reports whether a date value carries no clock part.
func (v Value) dateOnly() bool {
	h, m, s := v.t.Clock()
	return h == 0 && m == 0 && s == 0 && v.t.Nanosecond() == 0
}

// Text is the raw (unformatted) text of the value; null is "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		if v.dateOnly() {
			return v.t.Format(dateLayout)
		}
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// AsNumber returns the numeric reading of numbers, bools and numeric strings.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsTime returns the time reading of dates and date-like strings.
func (v Value) AsTime() (time.Time, bool) {
	switch v.kind {
	case KindDate:
		return v.t, true
	case KindString:
		return ParseTime(v.str)
	default:
		return time.Time{}, false
	}
}

// Truthy follows the loose truthiness used by boolean badges.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindString:
		return v.str != ""
	case KindDate:
		return true
	default:
		return false
	}
}

// Raw returns the value as a database/sql argument.
func (v Value) Raw() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
			return int64(v.num)
		}
		return v.num
	case KindBool:
		return v.b
	case KindDate:
		return v.t
	default:
		return nil
	}
}

// Equal reports whether both values hold the same data.
// Values of different kinds are equal when their text is, as a relational store would coerce them.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return v.kind == o.kind
	}
	if v.kind == o.kind {
		return Compare(v, o) == 0
	}
	if vt, ok := v.AsTime(); ok {
		if ot, ok := o.AsTime(); ok {
			return vt.Equal(ot)
		}
	}
	return v.Text() == o.Text()
}

// Compare orders null first, then bool < number < date < string, then by value.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	case KindDate:
		return a.t.Compare(b.t)
	case KindString:
		return strings.Compare(a.str, b.str)
	default:
		return 0
	}
}

// ParseTime parses the date and timestamp layouts accepted on the wire.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FromDB converts a value scanned by database/sql into a Value.
func FromDB(src interface{}) Value {
	switch x := src.(type) {
	case nil:
		return Null()
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case int64:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case bool:
		return Bool(x)
	case time.Time:
		return Date(x)
	case Value:
		return x
	default:
		return String(fmt.Sprint(x))
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindDate:
		return json.Marshal(v.Text())
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = String(x)
	case bool:
		*v = Bool(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return err
		}
		*v = Number(n)
	default:
		return fmt.Errorf("unsupported value %s", string(data))
	}
	return nil
}
