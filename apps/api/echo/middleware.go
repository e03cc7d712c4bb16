package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/user"
	metricsvc "github.com/trezcool/sunrise/services/metrics"
)

// gateMiddleware lets only sessions whose role is exactly role through.
func gateMiddleware(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, _ := getContextSession(ctx)
			switch d := gate.Check(sess, role); d {
			case gate.Allow:
				return next(ctx)
			case gate.RedirectHome:
				return redirectError(http.StatusForbidden, "permission denied", d)
			case gate.Pending:
				return redirectError(http.StatusUnauthorized, "session not resolved", d)
			default:
				return redirectError(http.StatusUnauthorized, "user not authenticated", d)
			}
		}
	}
}

// metricsMiddleware counts requests by method, route and status code.
// Errors are rendered here so the final status is known.
func metricsMiddleware(m *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(
				ctx.Request().Method, route, strconv.Itoa(ctx.Response().Status),
			).Inc()
			return nil
		}
	}
}
