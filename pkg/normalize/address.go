package normalize

import (
	"fmt"
	"strings"
)

const (
	cityPrefix  = "City-"
	statePrefix = "State-"
)

// AddressParts is a delivery address split into its fields.
type AddressParts struct {
	Street string
	City   string
	State  string
}

// ParseAddress splits "street, City-X, State-Y" into its parts.
func ParseAddress(raw string) (AddressParts, error) {
	parts := strings.Split(strings.TrimSpace(raw), ", ")
	if len(parts) != 3 {
		return AddressParts{}, fmt.Errorf("%w: %q", ErrMalformedAddress, raw)
	}

	street := strings.TrimSpace(parts[0])
	city, okCity := strings.CutPrefix(strings.TrimSpace(parts[1]), cityPrefix)
	state, okState := strings.CutPrefix(strings.TrimSpace(parts[2]), statePrefix)
	if !okCity || !okState || street == "" || city == "" || state == "" {
		return AddressParts{}, fmt.Errorf("%w: %q", ErrMalformedAddress, raw)
	}

	return AddressParts{Street: street, City: city, State: state}, nil
}

// AddressID derives the address key. It is only unique per customer, city and state.
func AddressID(customerID string, parts AddressParts) string {
	return fmt.Sprintf("ADDR-%s-%s-%s", customerID, parts.City, parts.State)
}
