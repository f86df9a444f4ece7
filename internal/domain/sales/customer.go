package sales

import (
	"strings"

	"github.com/ttacon/libphonenumber"

	"retailpos/internal/core/apperror"
)

// NormalizePhone parses a customer phone number and renders it in E.164.
// Numbers without a country code are read in defaultRegion (e.g. "IN").
func NormalizePhone(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	num, err := libphonenumber.Parse(raw, defaultRegion)
	if err != nil {
		return "", apperror.NewValidation("invalid customer phone").
			WithDetail("phone", raw).
			WithCause(err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", apperror.NewValidation("invalid customer phone").WithDetail("phone", raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
