package engine

import (
	"sort"
	"strings"

	"github.com/trezcool/sunrise/core/schema"
)

type SortDir string

const (
	SortNone SortDir = ""
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

const DefaultPageSize = 10

// PageSizes are the only accepted page sizes.
var PageSizes = []int{5, 10, 20, 50, 100}

type (
	PageRow struct {
		// Serial is the 1-based position of the row in fetch order.
		Serial int                    `json:"serial"`
		Key    schema.Row             `json:"key"`
		Values schema.Row             `json:"values"`
		Cells  map[string]schema.Cell `json:"cells"`
	}

	Page struct {
		Table     string                    `json:"table"`
		State     State                     `json:"state"`
		Mode      Mode                      `json:"mode"`
		Error     string                    `json:"error,omitempty"`
		Columns   []schema.ColumnDescriptor `json:"columns"`
		Rows      []PageRow                 `json:"rows"`
		Total     int                       `json:"total"`
		Matched   int                       `json:"matched"`
		Filter    string                    `json:"filter"`
		SortBy    string                    `json:"sort_by,omitempty"`
		SortDir   SortDir                   `json:"sort_dir,omitempty"`
		PageSize  int                       `json:"page_size"`
		PageIndex int                       `json:"page_index"`
		PageCount int                       `json:"page_count"`
	}
)

// ApplyFilter keeps the rows where any column's formatted or raw text contains text,
// ignoring case. Applying the same text twice is a no-op.
func (v *View) ApplyFilter(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	text = strings.TrimSpace(text)
	if text == v.filter {
		return
	}
	v.filter = text
	v.pageIndex = 0
}

// ToggleSort cycles asc, desc then unsorted on the same column; another column starts at asc.
func (v *View) ToggleSort(column string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.sortable(column) {
		return ErrUnknownColumn
	}
	if column != v.sortCol {
		v.sortCol, v.sortDir = column, SortAsc
		return nil
	}
	switch v.sortDir {
	case SortAsc:
		v.sortDir = SortDesc
	case SortDesc:
		v.sortCol, v.sortDir = "", SortNone
	default:
		v.sortDir = SortAsc
	}
	return nil
}

// Sort sets the sort explicitly; SortNone restores fetch order.
func (v *View) Sort(column string, dir SortDir) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if dir == SortNone || column == "" {
		v.sortCol, v.sortDir = "", SortNone
		return nil
	}
	if dir != SortAsc && dir != SortDesc {
		return ErrUnknownColumn
	}
	if !v.sortable(column) {
		return ErrUnknownColumn
	}
	v.sortCol, v.sortDir = column, dir
	return nil
}

func (v *View) sortable(column string) bool {
	if column == "" {
		return false
	}
	cols := v.opts.Registry.ColumnsFor(v.table)
	if len(cols) == 0 {
		return !v.hidden(column)
	}
	for _, c := range cols {
		if c.Field == column {
			return c.Sortable
		}
	}
	return false
}

func (v *View) hidden(field string) bool {
	for _, h := range v.opts.Registry.HiddenFor(v.table) {
		if h == field {
			return true
		}
	}
	return false
}

// Paginate selects the page; index is clamped to the last page.
func (v *View) Paginate(size, index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	valid := false
	for _, s := range PageSizes {
		if s == size {
			valid = true
			break
		}
	}
	if !valid {
		return ErrPageSize
	}
	v.pageSize = size
	v.pageIndex = index
	v.clampPage()
	return nil
}

func (v *View) clampPage() {
	count := pageCount(len(v.visible()), v.pageSize)
	if v.pageIndex >= count {
		v.pageIndex = count - 1
	}
	if v.pageIndex < 0 {
		v.pageIndex = 0
	}
}

func pageCount(n, size int) int {
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// visible returns the fetch positions of the filtered rows in display order.
func (v *View) visible() []int {
	cols := v.opts.Registry.ColumnsFor(v.table)
	needle := strings.ToLower(v.filter)

	idx := make([]int, 0, len(v.rows))
	for i, r := range v.rows {
		if needle == "" || v.rowMatches(r, cols, needle) {
			idx = append(idx, i)
		}
	}
	if v.sortCol == "" || v.sortDir == SortNone {
		return idx
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return schema.Compare(v.rows[idx[a]].Get(v.sortCol), v.rows[idx[b]].Get(v.sortCol)) < 0
	})
	if v.sortDir == SortDesc {
		for l, r := 0, len(idx)-1; l < r; l, r = l+1, r-1 {
			idx[l], idx[r] = idx[r], idx[l]
		}
	}
	return idx
}

func (v *View) rowMatches(r schema.Row, cols []schema.ColumnDescriptor, needle string) bool {
	if len(cols) == 0 {
		for _, f := range r.Fields() {
			if !v.hidden(f) && strings.Contains(strings.ToLower(r.Text(f)), needle) {
				return true
			}
		}
		return false
	}
	for _, c := range cols {
		val := r.Get(c.Field)
		if strings.Contains(strings.ToLower(val.Text()), needle) ||
			strings.Contains(strings.ToLower(c.Format.Format(val).Text), needle) {
			return true
		}
	}
	return false
}

// Page renders the current page.
func (v *View) Page() Page {
	v.mu.Lock()
	defer v.mu.Unlock()

	cols := v.opts.Registry.ColumnsFor(v.table)
	p := Page{
		Table:     v.table,
		State:     v.state,
		Mode:      v.mode,
		Columns:   cols,
		Rows:      []PageRow{},
		Total:     len(v.rows),
		Filter:    v.filter,
		SortBy:    v.sortCol,
		SortDir:   v.sortDir,
		PageSize:  v.pageSize,
		PageIndex: v.pageIndex,
		PageCount: 1,
	}
	if v.err != nil {
		p.Error = v.err.Error()
	}
	if v.state != StateReady {
		return p
	}

	idx := v.visible()
	p.Matched = len(idx)
	p.PageCount = pageCount(len(idx), v.pageSize)

	start := v.pageIndex * v.pageSize
	end := start + v.pageSize
	if start > len(idx) {
		start = len(idx)
	}
	if end > len(idx) {
		end = len(idx)
	}

	pk := v.opts.Registry.PrimaryKeysFor(v.table)
	for _, i := range idx[start:end] {
		r := v.rows[i]
		values := r.Clone()
		for _, h := range v.opts.Registry.HiddenFor(v.table) {
			delete(values, h)
		}
		cells := make(map[string]schema.Cell, len(cols))
		for _, c := range cols {
			cells[c.Field] = c.Format.Format(r.Get(c.Field))
		}
		p.Rows = append(p.Rows, PageRow{
			Serial: i + 1,
			Key:    schema.KeyFilter(r, pk),
			Values: values,
			Cells:  cells,
		})
	}
	return p
}
