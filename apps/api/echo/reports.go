package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/dashboard"
	"github.com/trezcool/sunrise/core/document"
	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/report"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
)

type reportApi struct {
	store  store.Store
	svc    *report.Service
	docs   *document.Service
	school core.SchoolConfig
}

func registerReportAPI(
	g *echo.Group,
	role user.Role,
	st store.Store,
	svc *report.Service,
	docs *document.Service,
	school core.SchoolConfig,
) {
	api := reportApi{store: st, svc: svc, docs: docs, school: school}

	g.GET("/dashboard", api.dashboard)

	rg := g.Group("/reports")
	if gate.HasFeature(role, gate.ReportAttendance) {
		rg.GET("/attendance", api.attendance)
		rg.GET("/attendance.pdf", api.attendancePDF)
	}
	if gate.HasFeature(role, gate.ReportResult) {
		rg.GET("/result", api.results)
		rg.GET("/result.pdf", api.resultsPDF)
	}
	if gate.HasFeature(role, gate.ReportFees) {
		rg.GET("/fees", api.fees)
		rg.GET("/fees.pdf", api.feesPDF)
	}
	if gate.HasFeature(role, gate.ReportHistory) {
		rg.GET("/history", api.history)
	}
}

// Handlers

func (api *reportApi) dashboard(ctx echo.Context) error {
	counts, err := dashboard.Stats(ctx.Request().Context(), api.store, core.Today(api.school.Location()))
	if err != nil {
		return core.NewFetchError(err)
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *reportApi) attendanceReport(ctx echo.Context) (report.AttendanceReport, report.AttendanceFilter, error) {
	var filter report.AttendanceFilter
	if err := ctx.Bind(&filter); err != nil {
		return report.AttendanceReport{}, filter, errors.Wrap(err, "binding to AttendanceFilter")
	}
	rep, err := api.svc.Attendance(ctx.Request().Context(), filter)
	if err != nil {
		return rep, filter, core.NewFetchError(err)
	}
	return rep, filter, nil
}

func (api *reportApi) attendance(ctx echo.Context) error {
	rep, _, err := api.attendanceReport(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) attendancePDF(ctx echo.Context) error {
	rep, filter, err := api.attendanceReport(ctx)
	if err != nil {
		return err
	}
	doc, err := api.docs.AttendancePDF(rep, filter.Student)
	if err != nil {
		return errors.Wrap(err, "rendering attendance report")
	}
	return sendDocument(ctx, doc)
}

func (api *reportApi) resultReport(ctx echo.Context) ([]report.StudentResult, report.ResultFilter, error) {
	var filter report.ResultFilter
	if err := ctx.Bind(&filter); err != nil {
		return nil, filter, errors.Wrap(err, "binding to ResultFilter")
	}
	results, err := api.svc.Results(ctx.Request().Context(), filter)
	if err != nil {
		return nil, filter, core.NewFetchError(err)
	}
	if results == nil {
		results = []report.StudentResult{}
	}
	return results, filter, nil
}

func (api *reportApi) results(ctx echo.Context) error {
	results, _, err := api.resultReport(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *reportApi) resultsPDF(ctx echo.Context) error {
	results, filter, err := api.resultReport(ctx)
	if err != nil {
		return err
	}
	doc, err := api.docs.ResultReportPDF(results, filter.Class)
	if err != nil {
		return errors.Wrap(err, "rendering result report")
	}
	return sendDocument(ctx, doc)
}

func (api *reportApi) feeReport(ctx echo.Context) (report.FeeReport, report.FeeFilter, error) {
	var filter report.FeeFilter
	if err := ctx.Bind(&filter); err != nil {
		return report.FeeReport{}, filter, errors.Wrap(err, "binding to FeeFilter")
	}
	rep, err := api.svc.Fees(ctx.Request().Context(), filter)
	if err != nil {
		return rep, filter, core.NewFetchError(err)
	}
	return rep, filter, nil
}

func (api *reportApi) fees(ctx echo.Context) error {
	rep, _, err := api.feeReport(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) feesPDF(ctx echo.Context) error {
	rep, filter, err := api.feeReport(ctx)
	if err != nil {
		return err
	}
	doc, err := api.docs.FeeReportPDF(rep, filter.Student)
	if err != nil {
		return errors.Wrap(err, "rendering fee report")
	}
	return sendDocument(ctx, doc)
}

func (api *reportApi) history(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.History(ctx.Request().Context()))
}
