package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fieldops/sopdesk/pkg/constants"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

// Decode reads the JSON body into dst and runs struct validation. Validation
// failures come back as coded 400s naming the first offending field.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return serrors.Validation("MALFORMED_BODY", "request body is not valid JSON")
	}
	if err := constants.Validate.Struct(dst); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return serrors.Validation("VALIDATION_FAILED", "field "+errs[0].Field()+" failed validation on "+errs[0].Tag())
		}
		return serrors.Validation("VALIDATION_FAILED", "request body failed validation")
	}
	return nil
}
