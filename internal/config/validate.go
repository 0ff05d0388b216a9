package config

import (
	"sync"

	"osrm-travel-tools/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the package validator with the osrm_profile rule
// registered. It shares domain.ValidateProfile with the routing adapter.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("osrm_profile", func(fl validator.FieldLevel) bool {
			return domain.ValidateProfile(fl.Field().String()) == nil
		})
	})
	return validate
}
