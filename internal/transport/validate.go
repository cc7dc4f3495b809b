package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tanicerdas/seedbot-console/model"
)

// validate is the shared validator instance. Struct tags use the json field
// name so validation details line up with what the client sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation. A nil return means dst is populated and valid.
func decodeAndValidate(r *http.Request, dst any) *model.ErrorEnvelope {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewBadRequestError("invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]model.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, model.FieldError{
					Field:   fe.Field(),
					Message: validationMessage(fe),
				})
			}
			return model.NewValidationError(details)
		}
		return model.NewBadRequestError(err.Error())
	}
	return nil
}

// validationMessage renders a human-readable message for a field error.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return "value is below the minimum of " + fe.Param()
	case "max":
		return "value is above the maximum of " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed validation rule: " + fe.Tag()
	}
}
