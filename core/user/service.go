package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")

	// login failures, shown as is
	msgUnknownUser   = "Invalid username or password"
	msgWrongPassword = "Invalid password"
)

type (
	Repository interface {
		// CheckUsernameUniqueness returns ErrUsernameExists if a user other than excludedUsers has username.
		CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		SetPassword(ctx context.Context, id int, hash []byte) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, exclUsers...); err != nil {
		if errors.Cause(err) == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Authenticate looks the user up once by username then checks the password hash.
func (svc *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.NewAuthError(msgUnknownUser)
		}
		return User{}, errors.Wrap(err, "getting user by username")
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, core.NewAuthError(msgWrongPassword)
	}
	return usr, nil
}

// Create validates nu and saves the new user with a hashed password.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(ctx, svc.validate, svc); err != nil {
		return User{}, err
	}

	usr := User{
		Username:  nu.Username,
		Role:      nu.Role,
		CreatedAt: core.NowFunc().UTC(),
	}
	if nu.FullName != "" {
		usr.FullName.SetValid(nu.FullName)
	}
	if nu.Email != "" {
		usr.Email.SetValid(nu.Email)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetPassword) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}
	usr, err := svc.repo.GetUserByUsername(ctx, data.Username)
	if err != nil {
		return errors.Wrap(err, "getting user by username")
	}
	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPassword(ctx, usr.ID, usr.PasswordHash)
}
