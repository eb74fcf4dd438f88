package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DefaultCountry is the ISO 3166-1 alpha-2 code used when none is given
const DefaultCountry = "PT"

var postalCodePattern = regexp.MustCompile(`^\d{4}-\d{3}$`)

// Address is a value object representing a Portuguese postal address
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// NewAddress creates a new Address, validating the postal code when present
func NewAddress(street, city, postalCode, country string) (Address, error) {
	a := Address{
		Street:     strings.TrimSpace(street),
		City:       strings.TrimSpace(city),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	if a.PostalCode != "" && a.Country == DefaultCountry && !IsValidPostalCode(a.PostalCode) {
		return Address{}, fmt.Errorf("invalid postal code %q: expected XXXX-XXX", a.PostalCode)
	}
	return a, nil
}

// IsEmpty checks if the address has no content
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.City == "" && a.PostalCode == ""
}

// CountryOrDefault returns the country code, falling back to PT
func (a Address) CountryOrDefault() string {
	if a.Country == "" {
		return DefaultCountry
	}
	return a.Country
}

// String returns a single-line representation
func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, strings.TrimSpace(a.PostalCode + " " + a.City), a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Value implements driver.Valuer for database storage
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(data, a)
}

// IsValidPostalCode checks the Portuguese XXXX-XXX format
func IsValidPostalCode(code string) bool {
	return postalCodePattern.MatchString(code)
}
