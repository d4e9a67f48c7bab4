package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	PLN Currency = "PLN" // Polish Zloty
	EUR Currency = "EUR" // Euro
	USD Currency = "USD" // US Dollar
	GBP Currency = "GBP" // British Pound
	CNY Currency = "CNY" // Chinese Yuan
	CHF Currency = "CHF" // Swiss Franc
)

// ParseCurrency normalizes and validates a currency code.
// Any three-letter alphabetic code is accepted; suppliers may invoice in
// currencies the constants above do not name.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid currency code %q", code)
	}
	return c, nil
}

// IsValid reports whether the code has the ISO 4217 shape
func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// String returns the code
func (c Currency) String() string {
	return string(c)
}

// Value implements driver.Valuer
func (c Currency) Value() (driver.Value, error) {
	return string(c), nil
}

// Scan implements sql.Scanner
func (c *Currency) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = ""
	case string:
		*c = Currency(v)
	case []byte:
		*c = Currency(v)
	default:
		return fmt.Errorf("cannot scan %T into Currency", value)
	}
	return nil
}
