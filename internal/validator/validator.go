// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// Financial year labels look like FY2025 (Indian FY, April to March).
	fyLabelRegex = regexp.MustCompile(`^FY\d{4}$`)
	// NSE/BSE tickers: uppercase alphanumerics with the odd & or - (M&M, BAJAJ-AUTO).
	symbolRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9&\-]{0,19}$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("fy_label", validateFYLabel)
		_ = v.RegisterValidation("symbol", validateSymbol)
	}
}

func validateFYLabel(fl validator.FieldLevel) bool {
	return fyLabelRegex.MatchString(fl.Field().String())
}

func validateSymbol(fl validator.FieldLevel) bool {
	return symbolRegex.MatchString(fl.Field().String())
}
