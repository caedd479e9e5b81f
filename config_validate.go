package nav

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var configValidate = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("routename", validateRouteName)
	return v
}

// validateRouteName accepts plain or dotted route names that can travel in a
// query string.
func validateRouteName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, "?#&= /")
}

// Validate checks the settings before a navigator is built from them.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
