package normalize

import (
	"testing"
	"time"

	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRow(line int, overrides map[string]string) models.RawRecord {
	values := map[string]string{
		models.ColPlatform:        "Amazon",
		models.ColProductID:       "P1",
		models.ColProductName:     "Kettle",
		models.ColCategory:        "Kitchen",
		models.ColCustomerID:      "C1",
		models.ColCustomerName:    "Ada",
		models.ColContactEmail:    "ada@example.com",
		models.ColDeliveryAddress: "221B Baker St, City-London, State-Greater London",
		models.ColOrderID:         "O1",
		models.ColDateOfSale:      "2024-03-15",
		models.ColDeliveryDate:    "2024-03-18",
		models.ColDeliveryStatus:  "Delivered",
		models.ColSellingPrice:    "100",
	}
	for k, v := range overrides {
		values[k] = v
	}

	fields := map[string]*string{}
	for k, v := range values {
		if v == "" {
			fields[k] = nil
			continue
		}
		fields[k] = str(v)
	}
	return models.RawRecord{Source: "orders.csv", Line: line, Fields: fields}
}

func TestDerive(t *testing.T) {
	t.Run("should deduplicate entities but keep every order line", func(t *testing.T) {
		records := []models.RawRecord{
			orderRow(2, nil),
			orderRow(3, nil),
			orderRow(4, map[string]string{models.ColProductID: "P2", models.ColSellingPrice: "200", models.ColQuantity: "3"}),
		}

		batch, err := Derive(records)
		require.NoError(t, err)

		assert.Equal(t, 3, batch.RecordCount)
		assert.Equal(t, []string{"Amazon"}, batch.Platforms)
		assert.Len(t, batch.Products, 2)
		assert.Len(t, batch.Customers, 1)
		require.Len(t, batch.Addresses, 1)
		assert.Equal(t, "ADDR-C1-London-Greater London", batch.Addresses[0].ID)
		assert.Equal(t, 0, batch.Addresses[0].Pincode)
		require.Len(t, batch.Orders, 1)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), batch.Orders[0].DateOfSale)
		assert.Equal(t, "ADDR-C1-London-Greater London", batch.Orders[0].AddressID)

		require.Len(t, batch.Lines, 3)
		assert.Equal(t, 1, batch.Lines[0].Quantity)
		assert.Equal(t, 3, batch.Lines[2].Quantity)
		assert.Equal(t, 200.0, batch.Lines[2].SellingPrice)
	})

	t.Run("should treat the same product id on another platform as a new product", func(t *testing.T) {
		batch, err := Derive([]models.RawRecord{
			orderRow(2, nil),
			orderRow(3, map[string]string{models.ColPlatform: "Flipkart", models.ColOrderID: "O2"}),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Amazon", "Flipkart"}, batch.Platforms)
		assert.Len(t, batch.Products, 2)
	})

	t.Run("should keep the first customer seen for an id", func(t *testing.T) {
		batch, err := Derive([]models.RawRecord{
			orderRow(2, nil),
			orderRow(3, map[string]string{models.ColContactEmail: "other@example.com"}),
		})
		require.NoError(t, err)
		require.Len(t, batch.Customers, 1)
		assert.Equal(t, "ada@example.com", *batch.Customers[0].ContactEmail)
	})

	t.Run("should skip entities whose id is missing", func(t *testing.T) {
		batch, err := Derive([]models.RawRecord{
			orderRow(2, map[string]string{models.ColOrderID: ""}),
			orderRow(3, map[string]string{models.ColOrderID: "O2", models.ColProductID: ""}),
		})
		require.NoError(t, err)
		assert.Len(t, batch.Customers, 1)
		assert.Len(t, batch.Products, 1)
		assert.Len(t, batch.Orders, 1)
		assert.Empty(t, batch.Lines)
	})

	t.Run("should fail on a malformed address", func(t *testing.T) {
		_, err := Derive([]models.RawRecord{
			orderRow(2, map[string]string{models.ColDeliveryAddress: "nowhere"}),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedAddress)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 2, parseErr.Line)
	})

	t.Run("should fail on a malformed date", func(t *testing.T) {
		_, err := Derive([]models.RawRecord{
			orderRow(2, map[string]string{models.ColDateOfSale: "15/03/2024"}),
		})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("should fail on a missing delivery date", func(t *testing.T) {
		_, err := Derive([]models.RawRecord{
			orderRow(2, map[string]string{models.ColDeliveryDate: ""}),
		})
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("should fail on a non numeric price", func(t *testing.T) {
		_, err := Derive([]models.RawRecord{
			orderRow(2, map[string]string{models.ColSellingPrice: "cheap"}),
		})
		assert.ErrorIs(t, err, ErrInvalidNumber)
	})

	t.Run("should fail on an order without a customer", func(t *testing.T) {
		_, err := Derive([]models.RawRecord{
			orderRow(2, map[string]string{models.ColCustomerID: ""}),
		})
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, models.ColCustomerID, parseErr.Column)
	})
}
