package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/user"
)

const (
	contextSessionKey = "session"
	bearerPrefix      = "Bearer "
)

var (
	errMissingToken = echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
		"error": "missing or malformed jwt", "redirect": gate.LoginRoute,
	})
	errInvalidToken = echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
		"error": "invalid or expired jwt", "redirect": gate.LoginRoute,
	})
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Username string    `json:"username"`
	FullName string    `json:"full_name,omitempty"`
	Role     user.Role `json:"role"`
}

// Session rebuilds the signed-in user carried by the claims.
func (c Claims) Session() *session.Session {
	id, _ := strconv.Atoi(c.Subject)
	usr := user.User{ID: id, Username: c.Username, Role: c.Role}
	if c.FullName != "" {
		usr.FullName = null.StringFrom(c.FullName)
	}
	return session.New(usr)
}

type authenticator struct {
	key    []byte
	issuer string
	expiry time.Duration
}

func newAuthenticator(conf *core.Config) *authenticator {
	return &authenticator{
		key:    []byte(conf.SecretKey),
		issuer: conf.AppName,
		expiry: conf.Server.JWTExpirationDelta,
	}
}

func (a *authenticator) claims(usr user.User) *Claims {
	now := core.NowFunc()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   a.issuer,
			Subject:  strconv.Itoa(usr.ID),
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: usr.Username,
		Role:     usr.Role,
	}
	if usr.FullName.Valid {
		claims.FullName = usr.FullName.String
	}
	if a.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.expiry))
	}
	return claims
}

func (a *authenticator) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a *authenticator) parse(raw string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateToken signs the claims of usr with the configured secret key.
func GenerateToken(conf *core.Config, usr user.User) (string, error) {
	a := newAuthenticator(conf)
	return a.sign(a.claims(usr))
}

// authMiddleware requires a valid bearer token and stores its session in the context.
func authMiddleware(a *authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return errMissingToken
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if raw == "" {
				return errMissingToken
			}
			claims, err := a.parse(raw)
			if err != nil {
				return echo.NewHTTPError(errInvalidToken.Code, errInvalidToken.Message).SetInternal(err)
			}
			ctx.Set(contextSessionKey, claims.Session())
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) (*session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(*session.Session); ok && sess != nil {
		return sess, nil
	}
	return nil, errUnauthorized
}
