package normalize

import (
	"math"
	"strconv"
	"time"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

// Batch holds the entity sets derived from one ingestion request, each in
// first seen order.
type Batch struct {
	RecordCount int
	Platforms   []string
	Products    []models.ProductKey
	Customers   []models.Customer
	Addresses   []models.Address
	Orders      []models.Order
	Lines       []models.OrderLine
}

// Counts summarises the candidate rows per entity.
func (b *Batch) Counts() map[string]int {
	return map[string]int{
		"platforms": len(b.Platforms),
		"products":  len(b.Products),
		"customers": len(b.Customers),
		"addresses": len(b.Addresses),
		"orders":    len(b.Orders),
		"lines":     len(b.Lines),
	}
}

type deriver struct {
	batch     *Batch
	platforms map[string]bool
	products  map[models.ProductKey]bool
	customers map[string]bool
	addresses map[models.Address]bool
	orders    map[string]bool
}

// Derive builds the entity sets. A record only contributes to the sets whose
// id it carries. Bad dates, numbers or addresses fail the whole batch.
func Derive(records []models.RawRecord) (*Batch, error) {
	d := &deriver{
		batch:     &Batch{RecordCount: len(records)},
		platforms: map[string]bool{},
		products:  map[models.ProductKey]bool{},
		customers: map[string]bool{},
		addresses: map[models.Address]bool{},
		orders:    map[string]bool{},
	}

	for _, record := range records {
		if err := d.add(record); err != nil {
			return nil, err
		}
	}

	return d.batch, nil
}

func (d *deriver) add(record models.RawRecord) error {
	platform := record.Value(models.ColPlatform)
	if platform != "" && !d.platforms[platform] {
		d.platforms[platform] = true
		d.batch.Platforms = append(d.batch.Platforms, platform)
	}

	productID := record.Value(models.ColProductID)
	customerID := record.Value(models.ColCustomerID)
	orderID := record.Value(models.ColOrderID)

	var product models.ProductKey
	if productID != "" {
		if platform == "" {
			return missing(record, models.ColPlatform)
		}
		product = models.ProductKey{
			ID:       productID,
			Name:     record.Value(models.ColProductName),
			Category: record.Value(models.ColCategory),
			Platform: platform,
		}
		if !d.products[product] {
			d.products[product] = true
			d.batch.Products = append(d.batch.Products, product)
		}
	}

	if customerID != "" && !d.customers[customerID] {
		d.customers[customerID] = true
		d.batch.Customers = append(d.batch.Customers, models.Customer{
			ID:           customerID,
			Name:         optional(record, models.ColCustomerName),
			ContactEmail: optional(record, models.ColContactEmail),
			Platform:     platform,
		})
	}

	var address *models.Address
	if customerID != "" && record.Has(models.ColDeliveryAddress) {
		parts, err := ParseAddress(record.Value(models.ColDeliveryAddress))
		if err != nil {
			return &ParseError{Source: record.Source, Line: record.Line, Column: models.ColDeliveryAddress, Err: err}
		}
		address = &models.Address{
			ID:         AddressID(customerID, parts),
			Street:     parts.Street,
			City:       parts.City,
			State:      parts.State,
			Pincode:    0,
			CustomerID: customerID,
		}
		if !d.addresses[*address] {
			d.addresses[*address] = true
			d.batch.Addresses = append(d.batch.Addresses, *address)
		}
	}

	if orderID == "" {
		return nil
	}

	if err := d.addOrder(record, orderID, customerID, platform, address); err != nil {
		return err
	}

	if productID == "" {
		return nil
	}

	price, err := parsePrice(record)
	if err != nil {
		return err
	}
	quantity, err := parseQuantity(record)
	if err != nil {
		return err
	}
	d.batch.Lines = append(d.batch.Lines, models.OrderLine{
		OrderID:      orderID,
		Product:      product,
		SellingPrice: price,
		Quantity:     quantity,
	})

	return nil
}

func (d *deriver) addOrder(record models.RawRecord, orderID, customerID, platform string, address *models.Address) error {
	switch {
	case platform == "":
		return missing(record, models.ColPlatform)
	case customerID == "":
		return missing(record, models.ColCustomerID)
	case address == nil:
		return missing(record, models.ColDeliveryAddress)
	}

	dateOfSale, err := parseDate(record, models.ColDateOfSale)
	if err != nil {
		return err
	}
	deliveryDate, err := parseDate(record, models.ColDeliveryDate)
	if err != nil {
		return err
	}

	if d.orders[orderID] {
		return nil
	}
	d.orders[orderID] = true
	d.batch.Orders = append(d.batch.Orders, models.Order{
		ID:             orderID,
		DateOfSale:     dateOfSale,
		DeliveryDate:   deliveryDate,
		DeliveryStatus: optional(record, models.ColDeliveryStatus),
		CustomerID:     customerID,
		AddressID:      address.ID,
		Platform:       platform,
		MetaData:       Metadata(record),
	})
	return nil
}

func parseDate(record models.RawRecord, column string) (time.Time, error) {
	value := record.Value(column)
	if value == "" {
		return time.Time{}, missing(record, column)
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, &ParseError{Source: record.Source, Line: record.Line, Column: column, Err: ErrInvalidDate}
	}
	return t, nil
}

func parsePrice(record models.RawRecord) (float64, error) {
	value := record.Value(models.ColSellingPrice)
	if value == "" {
		return 0, missing(record, models.ColSellingPrice)
	}
	price, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, &ParseError{Source: record.Source, Line: record.Line, Column: models.ColSellingPrice, Err: ErrInvalidNumber}
	}
	return price, nil
}

// parseQuantity defaults to 1 when the column is absent. Whole floats such as
// "2.0" are accepted.
func parseQuantity(record models.RawRecord) (int, error) {
	value := record.Value(models.ColQuantity)
	if value == "" {
		return 1, nil
	}
	if q, err := strconv.Atoi(value); err == nil && q >= 0 {
		return q, nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 && f == math.Trunc(f) && f <= math.MaxInt32 {
		return int(f), nil
	}
	return 0, &ParseError{Source: record.Source, Line: record.Line, Column: models.ColQuantity, Err: ErrInvalidNumber}
}

func optional(record models.RawRecord, column string) *string {
	value := record.Value(column)
	if value == "" {
		return nil
	}
	return &value
}

func missing(record models.RawRecord, column string) error {
	return &ParseError{Source: record.Source, Line: record.Line, Column: column, Err: ErrMissingField}
}
