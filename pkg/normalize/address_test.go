package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Run("should split street city and state", func(t *testing.T) {
		parts, err := ParseAddress("221B Baker St, City-London, State-Greater London")
		require.NoError(t, err)
		assert.Equal(t, AddressParts{Street: "221B Baker St", City: "London", State: "Greater London"}, parts)
		assert.Equal(t, "ADDR-C1-London-Greater London", AddressID("C1", parts))
	})

	t.Run("should reject an address without prefixes", func(t *testing.T) {
		_, err := ParseAddress("221B Baker St, London, Greater London")
		assert.ErrorIs(t, err, ErrMalformedAddress)
	})

	t.Run("should reject an address with too few parts", func(t *testing.T) {
		_, err := ParseAddress("221B Baker St, City-London")
		assert.ErrorIs(t, err, ErrMalformedAddress)
	})

	t.Run("should reject a street containing a comma", func(t *testing.T) {
		_, err := ParseAddress("Flat 2, 221B Baker St, City-London, State-Greater London")
		assert.ErrorIs(t, err, ErrMalformedAddress)
	})

	t.Run("should reject an empty city", func(t *testing.T) {
		_, err := ParseAddress("221B Baker St, City-, State-Greater London")
		assert.ErrorIs(t, err, ErrMalformedAddress)
	})
}
