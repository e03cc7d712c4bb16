package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/engine"
	"github.com/trezcool/sunrise/core/schema"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// TableQuery holds the browsing state of a table page.
// Page is the 0-based page index.
type TableQuery struct {
	Filter string `query:"filter"`
	Sort   string `query:"sort"`
	Dir    string `query:"dir"`
	Page   int    `query:"page"`
	Size   int    `query:"size"`
}

// Apply replays the query on a loaded view. The view sorts on one column only,
// so only the first ordering is used.
func (q TableQuery) Apply(v *engine.View, ord Ordering) error {
	v.ApplyFilter(q.Filter)

	col, dir := q.Sort, engine.SortDir(strings.ToLower(q.Dir))
	if col != "" && dir == engine.SortNone {
		dir = engine.SortAsc
	}
	if col == "" && len(ord.Orderings) > 0 {
		col, dir = ord.Orderings[0].Field, engine.SortDesc
		if ord.Orderings[0].Ascending {
			dir = engine.SortAsc
		}
	}
	if err := v.Sort(col, dir); err != nil {
		return errors.Wrapf(err, "sorting on %q", col)
	}

	size := q.Size
	if size == 0 {
		size = engine.DefaultPageSize
	}
	return v.Paginate(size, q.Page)
}

// bindRow decodes a JSON object body into a row.
func bindRow(ctx echo.Context) (schema.Row, error) {
	row := schema.Row{}
	if err := new(echo.DefaultBinder).BindBody(ctx, &row); err != nil {
		return nil, errors.Wrap(err, "binding to Row")
	}
	return row, nil
}
