package http

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"checkai/internal/core"
)

// Shared validator instance; validator.Validate is safe for concurrent
// use and caches struct metadata.
var validate = validator.New()

// parseBody decodes and validates a JSON request body. Failures wrap
// ErrMalformedInput so the error handler maps them to 400.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("%w: %s", core.ErrMalformedInput, validationMessage(errs[0]))
		}
		return fmt.Errorf("%w: %s", core.ErrMalformedInput, err.Error())
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field %s is required", fe.Field())
	case "len":
		return fmt.Sprintf("field %s must be %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag())
	}
}
