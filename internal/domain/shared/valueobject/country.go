package valueobject

import (
	"fmt"
	"strings"
)

// Country is an ISO 3166-1 alpha-2 code for a market the business trades in
type Country string

const (
	Nigeria  Country = "NG"
	Cameroon Country = "CM"
	Chad     Country = "TD"
)

// Currency is an ISO 4217 code. Each deployment runs in a single currency.
type Currency string

const (
	NGN Currency = "NGN" // Nigerian Naira
	XAF Currency = "XAF" // Central African CFA franc (Cameroon, Chad)
)

// ParseCountry normalizes and validates a country code
func ParseCountry(code string) (Country, error) {
	c := Country(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported country: %q", code)
	}
	return c, nil
}

// IsValid reports whether the country is one of the operating markets
func (c Country) IsValid() bool {
	switch c {
	case Nigeria, Cameroon, Chad:
		return true
	}
	return false
}

// Currency returns the local currency of the market
func (c Country) Currency() Currency {
	if c == Nigeria {
		return NGN
	}
	return XAF
}

// Name returns the English display name
func (c Country) Name() string {
	switch c {
	case Nigeria:
		return "Nigeria"
	case Cameroon:
		return "Cameroon"
	case Chad:
		return "Chad"
	}
	return string(c)
}

// String implements fmt.Stringer
func (c Country) String() string {
	return string(c)
}

// IsValid reports whether the currency is one the business settles in
func (c Currency) IsValid() bool {
	return c == NGN || c == XAF
}
