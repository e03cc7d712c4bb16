package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/document"
	"github.com/trezcool/sunrise/core/schema"
)

type certificateApi struct {
	docs     *document.Service
	validate *validator.Validate
	school   core.SchoolConfig
}

func registerCertificateAPI(g *echo.Group, docs *document.Service, validate *validator.Validate, school core.SchoolConfig) {
	api := certificateApi{docs: docs, validate: validate, school: school}

	cg := g.Group("/certificates")
	cg.GET("/students", api.searchStudents)
	cg.POST("/tc", api.transferCertificate)
	cg.GET("/idcard/:student_id", api.idCard)
	cg.GET("/result/:student_id", api.marksheet)
}

// Handlers

func (api *certificateApi) searchStudents(ctx echo.Context) error {
	rows, err := api.docs.SearchStudents(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return core.NewFetchError(err)
	}
	if rows == nil {
		rows = []schema.Row{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *certificateApi) transferCertificate(ctx echo.Context) error {
	var form document.TCForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to TCForm")
	}
	form.StudentID = core.CleanString(form.StudentID)
	if err := api.validate.Struct(form); err != nil {
		return err
	}

	doc, err := api.docs.TransferCertificate(ctx.Request().Context(), form)
	if err != nil {
		return errors.Wrap(err, "generating transfer certificate")
	}
	return sendDocument(ctx, doc)
}

func (api *certificateApi) idCard(ctx echo.Context) error {
	doc, err := api.docs.IDCard(ctx.Request().Context(), ctx.Param("student_id"))
	if err != nil {
		return errors.Wrap(err, "generating id card")
	}
	return sendDocument(ctx, doc)
}

// marksheetQuery selects the term and session of a marksheet.
type marksheetQuery struct {
	Term    string `json:"term" validate:"required"`
	Session string `json:"session" validate:"academic_session"`
}

// marksheet defaults to the current session; term is required.
func (api *certificateApi) marksheet(ctx echo.Context) error {
	q := marksheetQuery{
		Term:    core.CleanString(ctx.QueryParam("term")),
		Session: core.CleanString(ctx.QueryParam("session")),
	}
	if q.Session == "" {
		q.Session = api.school.Session
	}
	if err := api.validate.Struct(q); err != nil {
		return err
	}
	term, session := q.Term, q.Session

	doc, err := api.docs.Marksheet(ctx.Request().Context(), ctx.Param("student_id"), term, session)
	if err != nil {
		return errors.Wrap(err, "generating marksheet")
	}
	return sendDocument(ctx, doc)
}
