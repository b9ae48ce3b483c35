package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/messagely/backend/internal/common/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks `validate` tags on a decoded request body and maps
// failures to a 400 domain error naming the offending fields.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return commonerrors.ErrInternalError.WithCause(err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"invalid request: "+strings.Join(fields, ", "),
	)
}
