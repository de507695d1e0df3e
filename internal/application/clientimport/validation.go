package clientimport

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

var fieldNames = map[string]string{
	"RowNumber":        "rowNumber",
	"Name":             "name",
	"City":             "city",
	"State":            "state",
	"Document":         "document",
	"OwnerID":          "ownerId",
	"ExistingClientID": "existingClientId",
	"Action":           "action",
}

type rowValidator struct {
	validate *validator.Validate
}

func newRowValidator() *rowValidator {
	return &rowValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Check returns the first shape problem of the candidate as a ShapeValidationError.
func (v *rowValidator) Check(candidate domain.CandidateRow) error {
	err := v.validate.Struct(candidate)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ShapeValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field, ok := fieldNames[fe.StructField()]
	if !ok {
		field = fe.Field()
	}
	return &domain.ShapeValidationError{Field: field, Message: ruleMessage(fe)}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
