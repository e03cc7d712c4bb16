package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/attendance"
	"github.com/trezcool/sunrise/core/document"
	"github.com/trezcool/sunrise/core/engine"
	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")

	// status codes of the sentinel errors handlers let through
	sentinelCodes = []struct {
		err  error
		code int
	}{
		{core.ErrForbidden, http.StatusForbidden},
		{engine.ErrTableNotEnabled, http.StatusForbidden},
		{engine.ErrNoTable, http.StatusForbidden},
		{engine.ErrRowNotFound, http.StatusNotFound},
		{engine.ErrNotReady, http.StatusConflict},
		{engine.ErrNotEditing, http.StatusConflict},
		{engine.ErrNoDeleteRequest, http.StatusConflict},
		{engine.ErrPageSize, http.StatusBadRequest},
		{engine.ErrUnknownColumn, http.StatusBadRequest},
		{engine.ErrKeyImmutable, http.StatusBadRequest},
		{engine.ErrIncompleteKey, http.StatusBadRequest},
		{user.ErrNotFound, http.StatusNotFound},
		{document.ErrStudentNotFound, http.StatusNotFound},
		{document.ErrNoMarks, http.StatusNotFound},
		{attendance.ErrNotStaged, http.StatusGone},
	}
)

func sentinelCode(err error) (int, bool) {
	for _, s := range sentinelCodes {
		if s.err == err {
			return s.code, true
		}
	}
	return 0, false
}

// redirectError is a gate decision turned into a response.
func redirectError(code int, msg string, d gate.Decision) *echo.HTTPError {
	body := echo.Map{"error": msg}
	if to := d.Redirect(); to != "" {
		body["redirect"] = to
	}
	return echo.NewHTTPError(code, body)
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if c, ok := sentinelCode(cause); ok {
			code, message = c, cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					if translator != nil {
						fldErrs[vErr.Field()] = vErr.Translate(translator)
					} else {
						fldErrs[vErr.Field()] = vErr.Error()
					}
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			case *attendance.DecodeError:
				code = http.StatusBadRequest
				message = origErr.Error()
			case *core.AuthError:
				code = http.StatusUnauthorized
				message = origErr.Error()
			case *core.MutationError, *store.DataAccessError:
				code = http.StatusUnprocessableEntity
				message = origErr.Error()
			case *core.FetchError:
				code = http.StatusBadGateway
				message = echo.Map{"error": origErr.Error(), "retry": true}
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				sess, _ := getContextSession(ctx)
				logger.Error(msg, errors.Wrap(err, msg), sess)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = echo.Map{"error": err.Error()}
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
