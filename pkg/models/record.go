package models

import "strings"

// Columns of the order export.
const (
	ColPlatform             = "Platform"
	ColProductID            = "ProductID"
	ColProductName          = "ProductName"
	ColCategory             = "Category"
	ColCustomerID           = "CustomerID"
	ColCustomerName         = "CustomerName"
	ColContactEmail         = "ContactEmail"
	ColDeliveryAddress      = "DeliveryAddress"
	ColOrderID              = "OrderID"
	ColDateOfSale           = "DateOfSale"
	ColDeliveryDate         = "DeliveryDate"
	ColDeliveryStatus       = "DeliveryStatus"
	ColSellingPrice         = "SellingPrice"
	ColQuantity             = "Quantity"
	ColCouponUsed           = "CouponUsed"
	ColReturnWindow         = "ReturnWindow"
	ColPrimeDelivery        = "PrimeDelivery"
	ColWarehouseLocation    = "WarehouseLocation"
	ColResellerName         = "ResellerName"
	ColCommissionPercentage = "CommissionPercentage"
	ColPhoneNumber          = "PhoneNumber"
)

// MetadataColumns maps the optional per-platform columns to their meta_data keys.
var MetadataColumns = []struct {
	Column string
	Key    string
}{
	{ColCouponUsed, "coupon_used"},
	{ColReturnWindow, "return_window"},
	{ColPrimeDelivery, "prime_delivery"},
	{ColWarehouseLocation, "warehouse_location"},
	{ColResellerName, "reseller_name"},
	{ColCommissionPercentage, "commission_percentage"},
	{ColPhoneNumber, "phone_number"},
}

// RawRecord is one CSV row keyed by column name. A nil value means the cell
// was absent or held a null sentinel.
type RawRecord struct {
	Source string
	Line   int
	Fields map[string]*string
}

// Get returns the cell for column, or nil when it is missing.
func (r RawRecord) Get(column string) *string {
	return r.Fields[column]
}

// Value returns the trimmed cell for column, or "" when it is missing.
func (r RawRecord) Value(column string) string {
	v := r.Fields[column]
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// Has reports whether column holds a non-empty value.
func (r RawRecord) Has(column string) bool {
	return r.Value(column) != ""
}

// Table is a parsed CSV file: its header and records in file order.
type Table struct {
	Source  string
	Columns []string
	Records []RawRecord
}
