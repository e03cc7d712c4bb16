package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/user"
)

const msgLoggedOut = "Logged out"

type userApi struct {
	svc      *user.Service
	auth     *authenticator
	validate *validator.Validate
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	svc *user.Service,
	validate *validator.Validate,
) {
	api := userApi{
		svc:      svc,
		auth:     auth,
		validate: validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me)
}

// registerAdminUserAPI mounts account creation on the admin area.
func registerAdminUserAPI(g *echo.Group, svc *user.Service) {
	api := userApi{svc: svc}
	g.POST("/users", api.create)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.sign(api.auth.claims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Role:    usr.Role,
		Landing: gate.Landing(usr.Role),
		User:    usr,
	})
}

// logout only acknowledges; the client drops its token.
func (api *userApi) logout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgLoggedOut})
}

func (api *userApi) me(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), sess.User.ID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUnauthorized
		}
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token   string    `json:"token"`
		Role    user.Role `json:"role"`
		Landing string    `json:"landing"`
		User    user.User `json:"user"`
	}

	SuccessResponse struct {
		Success        string `json:"success"`
		Severity       string `json:"severity,omitempty"`
		DismissAfterMS int    `json:"dismiss_after_ms,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
