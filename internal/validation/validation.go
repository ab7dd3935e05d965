// Package validation builds the validator used to gate each wizard step,
// with English messages and the registration-specific tags.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

var (
	ninRegex        = regexp.MustCompile(`^\d{11}$`)
	phoneRegex      = regexp.MustCompile(`^\d{11}$`)
	personNameRegex = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
)

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func New() (*Validator, error) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{"nin", matches(ninRegex), "{0} must be exactly 11 digits"},
		{"phone", matches(phoneRegex), "{0} must be an 11 digit phone number"},
		{"person_name", matches(personNameRegex), "{0} may only contain letters, spaces, hyphens and apostrophes"},
		{"zone", oneOf(constants.Zones), "{0} must be one of the Kaduna zones"},
		{"lga", oneOf(constants.LGAs), "{0} must be a Kaduna local government area"},
		{"relationship", oneOf(constants.Relationships), "{0} must be one of " + strings.Join(constants.Relationships, ", ")},
	}

	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
			return nil, err
		}
		if err := registerTranslation(validate, trans, rule.tag, rule.message); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: validate, trans: trans}, nil
}

// Struct validates dst and returns its field errors, keyed by JSON name.
// A non-nil error is returned only when validation could not run.
func (v *Validator) Struct(dst any) ([]wizard.FieldError, error) {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil, nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}

	return lo.Map(ve, func(fe validator.FieldError, _ int) wizard.FieldError {
		return wizard.FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(v.trans),
		}
	}), nil
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return lo.Contains(values, fl.Field().String())
	}
}

func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) error {
	return validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}
