package cli

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidationError lists the invalid settings by flag name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

type validator struct {
	v     *govalidator.Validate
	trans ut.Translator
}

func newValidator() *validator {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())

	// Report the flag a setting comes from
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("flag")
		if name == "" {
			return fld.Name
		}
		return "--" + name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)

	return &validator{v: v, trans: trans}
}

func (val *validator) validate(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Translate(val.trans)
	}
	return &ValidationError{Fields: fields}
}

// commonFlags holds the settings shared by all subcommands
type commonFlags struct {
	OutputDir string `flag:"output" validate:"required"`
	LogFormat string `flag:"log-format" validate:"oneof=pretty json"`
}

// Validate checks the shared settings and those of the given section,
// which is one of the *Flags sections of f
func (f *Flags) Validate(section any) error {
	val := newValidator()

	if err := val.validate(commonFlags{OutputDir: f.OutputDir, LogFormat: f.LogFormat}); err != nil {
		return err
	}
	if section == nil {
		return nil
	}
	return val.validate(section)
}
