package druid

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tag rules on s and reports every failing
// field in a single VALIDATION_ERROR.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return errors.Validation("invalid query parameters", err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, describeFieldError(fieldErr))
	}
	return errors.Validation(strings.Join(messages, "; "), nil)
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := fieldErr.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s '%v' must be one of: %s", field, fieldErr.Value(), fieldErr.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", field, map[string]string{"gt": "greater than", "gte": "at least"}[fieldErr.Tag()], fieldErr.Param())
	default:
		return fmt.Sprintf("%s failed '%s' validation", field, fieldErr.Tag())
	}
}
