package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/sahelbuild/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// ledgerTags are the binding tags the request DTOs use beyond validator's
// built-ins.
var ledgerTags = map[string]validator.Func{
	"decimal_gt0": func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	},
	"decimal_gte0": func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	},
	"country": func(fl validator.FieldLevel) bool {
		_, err := valueobject.ParseCountry(fl.Field().String())
		return err == nil
	},
}

// SetupValidator installs the ledger tags on gin's binding validator. It is
// a no-op when gin runs some other validator engine.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterValidations(v)
}

// RegisterValidations reports fields by their JSON (or form) name and
// validates decimal.Decimal through its string form.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	var errs []error
	for tag, fn := range ledgerTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			errs = append(errs, fmt.Errorf("register %q: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// HandleValidationError answers 400 with one detail per failed field.
func HandleValidationError(c *gin.Context, err error) {
	var details []dto.ValidationDetail
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details = make([]dto.ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: validationMessage(fe)})
		}
	}
	c.JSON(http.StatusBadRequest, dto.Invalid("Request validation failed", getRequestID(c), details))
}

// tagMessages holds a format taking the tag parameter.
var tagMessages = map[string]string{
	"required":     "This field is required",
	"len":          "Must be exactly %s characters",
	"oneof":        "Must be one of: %s",
	"gt":           "Must be greater than %s",
	"gte":          "Must be greater than or equal to %s",
	"lte":          "Must be at most %s",
	"numeric":      "Must be numeric",
	"uuid":         "Must be a UUID",
	"decimal_gt0":  "Must be a positive amount",
	"decimal_gte0": "Must be zero or a positive amount",
	"country":      "Must be one of: NG CM TD",
}

func validationMessage(fe validator.FieldError) string {
	switch tag := fe.Tag(); tag {
	case "min", "max":
		bound := map[string]string{"min": "least", "max": "most"}[tag]
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at %s %s characters", bound, fe.Param())
		}
		return fmt.Sprintf("Must be at %s %s", bound, fe.Param())
	default:
		format, ok := tagMessages[tag]
		if !ok {
			return "Invalid value"
		}
		if strings.Contains(format, "%s") {
			return fmt.Sprintf(format, fe.Param())
		}
		return format
	}
}
