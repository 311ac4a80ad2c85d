package handlers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tickerPattern accepts exchange tickers such as "AAPL" or "BRK.B"
var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)

// newValidator returns a validator with the "ticker" tag registered
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerPattern.MatchString(fl.Field().String())
	})
	return v
}

// describeValidation turns validator errors into a short client message
func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
