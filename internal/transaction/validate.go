package transaction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	maxCategoryLen    = 100
	maxDescriptionLen = 255
)

// amountLimit is the first value NUMERIC(12,2) cannot store.
var amountLimit = decimal.New(1, 10)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateCreate(p CreateParams) error {
	if err := validate.Struct(p); err != nil {
		return toValidationError(err, "")
	}

	return validateAmount(p.Amount)
}

// validateUpdate only checks the fields present in the patch.
func validateUpdate(p UpdateParams) error {
	if p.Type != nil {
		if err := validate.Var(string(*p.Type), "oneof=income expense"); err != nil {
			return toValidationError(err, "type")
		}
	}

	if p.Category != nil {
		if err := validate.Var(*p.Category, fmt.Sprintf("required,max=%d", maxCategoryLen)); err != nil {
			return toValidationError(err, "category")
		}
	}

	if p.Description != nil {
		if err := validate.Var(*p.Description, fmt.Sprintf("max=%d", maxDescriptionLen)); err != nil {
			return toValidationError(err, "description")
		}
	}

	if p.Amount != nil {
		return validateAmount(*p.Amount)
	}

	return nil
}

func validateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}

	if d.GreaterThanOrEqual(amountLimit) {
		return &ValidationError{Field: "amount", Reason: "must be less than 10000000000"}
	}

	if !d.Equal(d.Round(2)) {
		return &ValidationError{Field: "amount", Reason: "must have at most 2 decimal places"}
	}

	return nil
}

// toValidationError converts the first validator failure. field overrides the
// reported name for validate.Var calls, which carry no struct field.
func toValidationError(err error, field string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	if field == "" {
		field = strings.ToLower(fe.Field())
	}

	return &ValidationError{Field: field, Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}

	return "is invalid"
}
