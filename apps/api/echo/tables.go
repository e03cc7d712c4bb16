package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/document"
	"github.com/trezcool/sunrise/core/engine"
	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/schema"
)

type tableApi struct {
	opts engine.Options
	docs *document.Service
}

func registerTableAPI(g *echo.Group, opts engine.Options, docs *document.Service) {
	api := tableApi{opts: opts, docs: docs}

	tg := g.Group("/tables")
	tg.GET("", api.list)
	tg.GET("/:table", api.page)
	tg.POST("/:table", api.add)
	tg.PUT("/:table", api.save)
	tg.DELETE("/:table", api.destroy)
	tg.POST("/:table/details.pdf", api.details)
}

// load mounts the view of the :table param and fetches it.
func (api *tableApi) load(ctx echo.Context) (*engine.View, error) {
	sess, err := getContextSession(ctx)
	if err != nil {
		return nil, err
	}
	v := engine.NewView(api.opts, sess)
	if err = v.SelectTable(ctx.Param("table"), ""); err != nil {
		return nil, err
	}
	if err = v.Load(ctx.Request().Context()); err != nil {
		return nil, err
	}
	return v, nil
}

func notify(ctx echo.Context, code int, n engine.Notification) error {
	return ctx.JSON(code, SuccessResponse{
		Success:        n.Message,
		Severity:       string(n.Severity),
		DismissAfterMS: n.DismissAfterMS,
	})
}

func sendDocument(ctx echo.Context, doc document.Document) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return ctx.Blob(http.StatusOK, "application/pdf", doc.Content)
}

// Handlers

func (api *tableApi) list(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	tables := []schema.TableDescriptor{}
	for _, name := range gate.EnabledTables(sess.Role) {
		if t, ok := api.opts.Registry.Describe(name); ok {
			tables = append(tables, t)
		}
	}
	return ctx.JSON(http.StatusOK, tables)
}

func (api *tableApi) page(ctx echo.Context) error {
	var query TableQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to TableQuery")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	v, err := api.load(ctx)
	if err != nil {
		return err
	}
	if err = query.Apply(v, *ordering); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v.Page())
}

func (api *tableApi) add(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if sess.Role.MostRestricted() {
		return core.ErrForbidden
	}
	values, err := bindRow(ctx)
	if err != nil {
		return err
	}

	v, err := api.load(ctx)
	if err != nil {
		return err
	}
	n, err := v.Add(ctx.Request().Context(), values)
	if err != nil {
		return errors.Wrap(err, "adding record")
	}
	return notify(ctx, http.StatusCreated, n)
}

// save overwrites the record identified by the key fields of the body.
func (api *tableApi) save(ctx echo.Context) error {
	row, err := bindRow(ctx)
	if err != nil {
		return err
	}

	v, err := api.load(ctx)
	if err != nil {
		return err
	}
	buf, err := v.Edit(row)
	if err != nil {
		return errors.Wrap(err, "editing record")
	}
	for field, val := range row {
		if api.opts.Registry.IsKey(v.Table(), field) || isHidden(api.opts.Registry.HiddenFor(v.Table()), field) {
			continue
		}
		if err = buf.Set(field, val); err != nil {
			return errors.Wrapf(err, "setting %s", field)
		}
	}

	n, err := v.Save(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "saving record")
	}
	return notify(ctx, http.StatusOK, n)
}

func (api *tableApi) destroy(ctx echo.Context) error {
	filter, err := bindRow(ctx)
	if err != nil {
		return err
	}

	v, err := api.load(ctx)
	if err != nil {
		return err
	}
	if _, err = v.RequestDelete(filter); err != nil {
		return errors.Wrap(err, "requesting delete")
	}
	n, err := v.ConfirmDelete(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return notify(ctx, http.StatusOK, n)
}

func (api *tableApi) details(ctx echo.Context) error {
	key, err := bindRow(ctx)
	if err != nil {
		return err
	}

	v, err := api.load(ctx)
	if err != nil {
		return err
	}
	row, err := v.Find(key)
	if err != nil {
		return errors.Wrap(err, "finding record")
	}
	doc, err := api.docs.DetailsPDF(v.Table(), engine.Details(api.opts.Registry, v.Table(), row))
	if err != nil {
		return errors.Wrap(err, "rendering details")
	}
	return sendDocument(ctx, doc)
}

func isHidden(hidden []string, field string) bool {
	for _, h := range hidden {
		if h == field {
			return true
		}
	}
	return false
}
