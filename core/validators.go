package core

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// RequiredText is the message of every missing required field.
const RequiredText = "this field is required"

var (
	alphaNumUnderRegex = regexp.MustCompile(`^\w+$`)
	sessionRegex       = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// customTag is a validation tag of ours along with its error text.
type customTag struct {
	tag  string
	fn   validator.Func
	text string
}

var customTags = []customTag{
	{tag: "alphanum_", fn: alphaNumUnderValidation, text: "only alphanumeric characters and underscores are allowed"},
	{tag: "isodate", fn: isoDateValidation, text: "must be a date formatted as YYYY-MM-DD"},
	{tag: "academic_session", fn: academicSessionValidation, text: "must be an academic session like 2024-25"},
}

// InitValidators registers the json field names, the custom tags and their
// translations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, ct := range customTags {
		_ = validate.RegisterValidation(ct.tag, ct.fn)
		RegisterCustomTranslation(validate, translator, ct.tag, ct.text)
	}
	for _, tag := range []string{"required", "required_with"} {
		RegisterCustomTranslation(validate, translator, tag, RequiredText, true)
	}
}

// RegisterCustomTranslation registers text as the message of tag.
// Pass override to replace a default translation.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	ovrd := len(override) > 0 && override[0]
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateErrors maps validation errors to their translated message per field.
func TranslateErrors(errs validator.ValidationErrors, translator ut.Translator) map[string]string {
	fldErrs := make(map[string]string, len(errs))
	for _, vErr := range errs {
		fldErrs[vErr.Field()] = vErr.Translate(translator)
	}
	return fldErrs
}

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// academicSessionValidation accepts "YYYY-YY" where YY is the year after YYYY.
func academicSessionValidation(fl validator.FieldLevel) bool {
	m := sessionRegex.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return (start+1)%100 == end
}
