package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("field"); name != "" {
				return name
			}
			return strings.ToLower(f.Name)
		})
	})
	return validate
}

type namedFields struct {
	OwnerID string `field:"owner_id" validate:"required"`
	Name    string `validate:"required,max=200"`
}

// validateStruct runs tag validation and reports the first failure as an
// InvalidInputError.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InvalidInputError{Reason: err.Error()}
	}
	fe := verrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "must not be empty"
	case "max":
		reason = fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		reason = fmt.Sprintf("must be one of %s, got %q", fe.Param(), fe.Value())
	default:
		reason = "failed " + fe.Tag()
	}
	return &InvalidInputError{Field: fe.Field(), Reason: reason}
}

func requirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return &InvalidInputError{Field: field, Reason: "must be greater than zero"}
	}
	return nil
}

// ValidationError ties a validation failure to one record of a batch.
type ValidationError struct {
	Index    int
	RecordID string
	Err      error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("record %d [%s]: %v", e.Index, e.RecordID, e.Err)
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidateInstallments validates every record of a batch and returns all failures.
func ValidateInstallments(recs []InstallmentRecord) []ValidationError {
	var errs []ValidationError
	for i, r := range recs {
		if err := r.Validate(); err != nil {
			errs = append(errs, ValidationError{Index: i, RecordID: r.ID, Err: err})
		}
	}
	return errs
}
