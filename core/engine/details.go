package engine

import (
	"sort"
	"strings"

	"github.com/trezcool/sunrise/core/schema"
)

// NullText is how a null value is shown in record details.
const NullText = "—"

type Detail struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Details lists row as labelled text: registry columns first, then the remaining
// fields in name order. Hidden fields are left out.
func Details(reg *schema.Registry, table string, row schema.Row) []Detail {
	if reg == nil {
		reg = schema.Default
	}
	skip := make(map[string]bool)
	for _, h := range reg.HiddenFor(table) {
		skip[h] = true
	}

	var fields []string
	for _, c := range reg.ColumnsFor(table) {
		if _, ok := row[c.Field]; ok && !skip[c.Field] {
			fields = append(fields, c.Field)
			skip[c.Field] = true
		}
	}
	var rest []string
	for _, f := range row.Fields() {
		if !skip[f] {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	fields = append(fields, rest...)

	details := make([]Detail, 0, len(fields))
	for _, f := range fields {
		val := NullText
		if v := row.Get(f); !v.IsNull() {
			val = v.Text()
		}
		details = append(details, Detail{Field: detailLabel(f), Value: val})
	}
	return details
}

func detailLabel(field string) string {
	return strings.ToUpper(strings.ReplaceAll(field, "_", " "))
}
