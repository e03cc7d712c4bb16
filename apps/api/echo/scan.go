package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core/attendance"
	"github.com/trezcool/sunrise/core/engine"
)

type scanApi struct {
	scanner *attendance.Scanner
}

func registerScanAPI(g *echo.Group, scanner *attendance.Scanner) {
	api := scanApi{scanner: scanner}

	sg := g.Group("/attendance/scan")
	sg.POST("", api.stage)
	sg.POST("/confirm", api.confirm)
}

type (
	ScanRequest struct {
		Payload string `json:"payload"`
	}

	ScanResponse struct {
		Token     string             `json:"token"`
		Label     string             `json:"label"`
		Payload   attendance.Payload `json:"payload"`
		ExpiresAt time.Time          `json:"expires_at"`
	}

	ConfirmScanRequest struct {
		Token string `json:"token"`
	}
)

// Handlers

// stage decodes a scanned code and holds it until confirmed; nothing is written.
func (api *scanApi) stage(ctx echo.Context) error {
	var data ScanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScanRequest")
	}
	staged, err := api.scanner.Stage(data.Payload)
	if err != nil {
		return errors.Wrap(err, "staging scan")
	}
	return ctx.JSON(http.StatusOK, ScanResponse{
		Token:     staged.Token,
		Label:     staged.Label(),
		Payload:   staged.Payload,
		ExpiresAt: staged.ExpiresAt,
	})
}

func (api *scanApi) confirm(ctx echo.Context) error {
	var data ConfirmScanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmScanRequest")
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	msg, err := api.scanner.ConfirmToken(ctx.Request().Context(), data.Token, sess)
	if err != nil {
		return errors.Wrap(err, "confirming scan")
	}
	return notify(ctx, http.StatusCreated, engine.Success(msg))
}
