package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation codes / Codes de violation
const (
	CodeMissing       = "missing"
	CodeNull          = "null"
	CodeWrongType     = "wrong_type"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeOutOfRange    = "out_of_range"
	CodeNotAllowed    = "not_allowed"
	CodeInvalidFormat = "invalid_format"
	CodeUnknownField  = "unknown_field"
)

// validate is safe for concurrent use and caches parsed tags
var validate = validator.New()

// Rule is one declarative constraint on a field value / Contrainte déclarative sur la valeur d'un champ
type Rule struct {
	Code    string // Violation code reported on failure / Code de violation en cas d'échec
	Tag     string // validator tag applied to the value / Tag validator appliqué à la valeur
	Message string
}

// check applies the rule to an already type-checked value / Applique la règle à une valeur déjà typée
func (r Rule) check(value any) bool {
	return validate.Var(value, r.Tag) == nil
}

// MinLength requires at least n characters / Exige au moins n caractères
func MinLength(n int) Rule {
	return Rule{
		Code:    CodeTooShort,
		Tag:     fmt.Sprintf("min=%d", n),
		Message: fmt.Sprintf("must be at least %d characters", n),
	}
}

// MaxLength allows at most n characters / Autorise au plus n caractères
func MaxLength(n int) Rule {
	return Rule{
		Code:    CodeTooLong,
		Tag:     fmt.Sprintf("max=%d", n),
		Message: fmt.Sprintf("must be at most %d characters", n),
	}
}

// Range bounds a numeric value, inclusive / Borne une valeur numérique, incluse
func Range(min, max float64) Rule {
	lo, hi := formatFloat(min), formatFloat(max)
	return Rule{
		Code:    CodeOutOfRange,
		Tag:     fmt.Sprintf("gte=%s,lte=%s", lo, hi),
		Message: fmt.Sprintf("must be between %s and %s", lo, hi),
	}
}

// Min sets an inclusive lower bound / Fixe une borne inférieure incluse
func Min(min float64) Rule {
	lo := formatFloat(min)
	return Rule{
		Code:    CodeOutOfRange,
		Tag:     "gte=" + lo,
		Message: "must be at least " + lo,
	}
}

// OneOf restricts a string to a fixed set / Restreint une chaîne à un ensemble fixe
func OneOf(values ...string) Rule {
	return Rule{
		Code:    CodeNotAllowed,
		Tag:     "oneof=" + strings.Join(values, " "),
		Message: "must be one of: " + strings.Join(values, ", "),
	}
}

// Email requires a well-formed address / Exige une adresse bien formée
func Email() Rule {
	return Rule{
		Code:    CodeInvalidFormat,
		Tag:     "email",
		Message: "must be a valid email address",
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
