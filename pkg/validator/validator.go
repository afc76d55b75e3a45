package validator

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// MinPasswordLength is the shortest password accepted by the strongpassword rule.
const MinPasswordLength = 8

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// customRules are the project specific tags and their English messages.
var customRules = []struct {
	tag     string
	message string
	check   func(string) bool
}{
	{tag: "strongpassword", message: "{0} must contain upper and lower case letters and a digit", check: IsStrongPassword},
	{tag: "phone", message: "{0} must be a valid phone number", check: IsPhone},
}

// FieldError describes one failed rule with a human readable message.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors collects every failure of a struct.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(v))
	for i, fe := range v {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

type engine struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	once   sync.Once
	shared *engine
)

func get() *engine {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)

		locale := en.New()
		trans, _ := ut.New(locale, locale).GetTranslator("en")
		_ = entranslations.RegisterDefaultTranslations(v, trans)

		for _, rule := range customRules {
			check := rule.check
			_ = v.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
				return check(fl.Field().String())
			})
			registerMessage(v, trans, rule.tag, rule.message)
		}
		shared = &engine{validate: v, trans: trans}
	})
	return shared
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, message string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, message, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// jsonFieldName reports fields by their wire name so messages match the payload.
func jsonFieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return fld.Name
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ValidateStruct runs the validate tags of s.
func ValidateStruct(s any) error {
	e := get()
	err := e.validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: fe.Translate(e.trans),
		})
	}
	return failures
}

// RegisterValidation adds a custom rule. The optional message uses {0} for the field name.
func RegisterValidation(tag string, fn validator.Func, message ...string) error {
	e := get()
	if err := e.validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	if len(message) > 0 {
		registerMessage(e.validate, e.trans, tag, message[0])
	}
	return nil
}

// IsStrongPassword reports whether password has at least MinPasswordLength
// characters including an upper-case letter, a lower-case letter and a digit.
func IsStrongPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// IsPhone reports whether value looks like an E.164 number with an optional leading plus.
func IsPhone(value string) bool {
	return phonePattern.MatchString(value)
}
