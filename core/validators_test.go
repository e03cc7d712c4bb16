package core_test

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core"
)

type enrolment struct {
	Code    string `json:"code" validate:"required,alphanum_"`
	Joined  string `json:"joined" validate:"omitempty,isodate"`
	Session string `json:"session" validate:"academic_session"`
	Email   string `json:"email" validate:"required_with=Code"`
}

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	tests := []struct {
		name    string
		data    enrolment
		wantErr map[string]string
	}{
		{
			name: "ok",
			data: enrolment{Code: "S_1", Joined: "2024-07-01", Session: "2024-25", Email: "a@b.in"},
		},
		{
			name: "ok, century rollover",
			data: enrolment{Code: "S1", Session: "2099-00", Email: "a@b.in"},
		},
		{
			name:    "required",
			data:    enrolment{Session: "2024-25"},
			wantErr: map[string]string{"code": core.RequiredText},
		},
		{
			name:    "required_with",
			data:    enrolment{Code: "S1", Session: "2024-25"},
			wantErr: map[string]string{"email": core.RequiredText},
		},
		{
			name: "custom tags",
			data: enrolment{Code: "S-1", Joined: "01/07/2024", Session: "2024-26", Email: "a@b.in"},
			wantErr: map[string]string{
				"code":    "only alphanumeric characters and underscores are allowed",
				"joined":  "must be a date formatted as YYYY-MM-DD",
				"session": "must be an academic session like 2024-25",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.data)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			assert.Equal(t, tc.wantErr, core.TranslateErrors(vErrs, translator))
		})
	}
}
