package shared

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EmailRule is the validator tag of the e-mail format accepted by the backend.
const EmailRule = "acervo_email"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var newValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation(EmailRule, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
})

// Validator returns the process-wide validator with the acervo rules registered.
func Validator() *validator.Validate { return newValidator() }

// ValidEmail reports whether s looks like an e-mail address (non-space, an @, and a dotted domain).
func ValidEmail(s string) bool {
	return Validator().Var(s, EmailRule) == nil
}

// Rule is how one failed check is reported. An empty Message reports Err alone.
// A Message containing a verb is formatted with the offending value.
type Rule struct {
	Field   string
	Message string
	Err     error
}

// CheckStruct validates v, restricted to fields when any are given, and turns the first
// failure into an error through rules.
//
// Rules are looked up by "Field.tag", then "Field", then "tag", with struct field names.
// Failures of required rules are reported before format failures.
func CheckStruct(v any, rules map[string]Rule, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = Validator().StructPartial(v, fields...)
	} else {
		err = Validator().Struct(v)
	}

	var failed validator.ValidationErrors
	if !errors.As(err, &failed) {
		return err
	}

	fe := failed[0]
	for _, f := range failed {
		if strings.HasPrefix(f.Tag(), "required") {
			fe = f
			break
		}
	}

	rule, ok := lookupRule(rules, fe)
	if !ok {
		return NewValidationError(strings.ToLower(fe.Field()), fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag()), nil)
	}
	switch {
	case rule.Message == "":
		return fmt.Errorf("%s: %w", rule.Field, orInvalidInput(rule.Err))
	case strings.Contains(rule.Message, "%"):
		return NewValidationError(rule.Field, fmt.Sprintf(rule.Message, fe.Value()), rule.Err)
	}
	return NewValidationError(rule.Field, rule.Message, rule.Err)
}

func lookupRule(rules map[string]Rule, fe validator.FieldError) (Rule, bool) {
	for _, key := range []string{fe.StructField() + "." + fe.Tag(), fe.StructField(), fe.Tag()} {
		if r, ok := rules[key]; ok {
			return r, true
		}
	}
	return Rule{}, false
}

func orInvalidInput(err error) error {
	if err == nil {
		return ErrInvalidInput
	}
	return err
}
