package schema

// DefaultPrimaryKey is used for tables the registry does not know.
const DefaultPrimaryKey = "id"

type (
	ColumnDescriptor struct {
		Field    string    `json:"field"`
		Label    string    `json:"label"`
		Width    int       `json:"width,omitempty"`
		Sortable bool      `json:"sortable"`
		Format   Formatter `json:"format"`
	}

	TableDescriptor struct {
		Name         string             `json:"name"`
		PrimaryKey   []string           `json:"primary_key"`
		DefaultOrder string             `json:"default_order,omitempty"`
		Columns      []ColumnDescriptor `json:"columns"`
		// Hidden fields are never returned to clients (e.g. password hashes).
		Hidden []string `json:"-"`
	}
)

// Registry is the static table metadata; it is read-only after construction.
type Registry struct {
	order  []string
	tables map[string]TableDescriptor
}

func NewRegistry(tables ...TableDescriptor) *Registry {
	reg := &Registry{
		order:  make([]string, 0, len(tables)),
		tables: make(map[string]TableDescriptor, len(tables)),
	}
	for _, t := range tables {
		if len(t.PrimaryKey) == 0 {
			t.PrimaryKey = []string{DefaultPrimaryKey}
		}
		if _, dup := reg.tables[t.Name]; !dup {
			reg.order = append(reg.order, t.Name)
		}
		reg.tables[t.Name] = t
	}
	return reg
}

// Tables returns the known table names in registration order.
func (reg *Registry) Tables() []string {
	return append([]string(nil), reg.order...)
}

func (reg *Registry) Known(table string) bool {
	_, ok := reg.tables[table]
	return ok
}

func (reg *Registry) Describe(table string) (TableDescriptor, bool) {
	t, ok := reg.tables[table]
	return t, ok
}

// PrimaryKeysFor never returns an empty list: unknown tables use ["id"].
func (reg *Registry) PrimaryKeysFor(table string) []string {
	if t, ok := reg.tables[table]; ok {
		return append([]string(nil), t.PrimaryKey...)
	}
	return []string{DefaultPrimaryKey}
}

// ColumnsFor returns an empty list for unknown tables.
func (reg *Registry) ColumnsFor(table string) []ColumnDescriptor {
	cols := []ColumnDescriptor{}
	if t, ok := reg.tables[table]; ok {
		cols = append(cols, t.Columns...)
	}
	return cols
}

func (reg *Registry) DefaultOrderFieldFor(table string) (string, bool) {
	t, ok := reg.tables[table]
	if !ok || t.DefaultOrder == "" {
		return "", false
	}
	return t.DefaultOrder, true
}

func (reg *Registry) HiddenFor(table string) []string {
	return reg.tables[table].Hidden
}

// IsKey reports whether field is part of the table's primary key.
func (reg *Registry) IsKey(table, field string) bool {
	for _, pk := range reg.PrimaryKeysFor(table) {
		if pk == field {
			return true
		}
	}
	return false
}
