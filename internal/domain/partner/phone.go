package partner

import (
	"strings"

	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/ttacon/libphonenumber"
)

// NormalizePhone validates a phone number for the given market and returns
// it in E.164 form. Local formats such as "0803 123 4567" are accepted.
func NormalizePhone(raw string, country valueobject.Country) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", shared.NewDomainError("INVALID_PHONE", "Phone number is required")
	}
	p, err := libphonenumber.Parse(raw, string(country))
	if err != nil {
		return "", shared.NewDomainError("INVALID_PHONE", "Phone number could not be parsed: "+raw)
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", shared.NewDomainError("INVALID_PHONE", "Phone number is not valid for "+country.Name())
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}
