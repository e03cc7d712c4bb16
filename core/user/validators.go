package user

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sunrise/core"
)

var (
	roleTag  = "role"
	roleText = "must be one of admin, teacher or student"
)

// InitValidators registers the user validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}

// roleValidation checks that the field holds one of AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).Valid()
}

// Validate cleans nu, applies the struct rules then checks username uniqueness.
func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.clean()
	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Username)
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.Username = core.CleanString(rp.Username, true /* lower */)
	return validate.Struct(rp)
}
