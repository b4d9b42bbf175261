package v1

import (
	"strings"

	"go-jobmatch-backend/pkg/apperror"
	"go-jobmatch-backend/pkg/validation"
)

var validate = validation.New()

// bindError turns a binding failure into a readable 400
func bindError(err error) *apperror.AppError {
	return apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
}
