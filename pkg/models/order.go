package models

import "time"

// ProductKey identifies a product row. The same external id may appear under
// several platforms or categories.
type ProductKey struct {
	ID       string
	Name     string
	Category string
	Platform string
}

type Customer struct {
	ID           string
	Name         *string
	ContactEmail *string
	Platform     string
}

// Address is a parsed delivery address. Two addresses are the same entity
// when every field matches.
type Address struct {
	ID         string
	Street     string
	City       string
	State      string
	Pincode    int
	CustomerID string
}

type Order struct {
	ID             string
	DateOfSale     time.Time
	DeliveryDate   time.Time
	DeliveryStatus *string
	CustomerID     string
	AddressID      string
	Platform       string
	MetaData       map[string]any
}

// OrderLine is one product sold on an order. Lines are never deduplicated.
type OrderLine struct {
	OrderID      string
	Product      ProductKey
	SellingPrice float64
	Quantity     int
}

// IngestionResult is returned to callers of the ingestion pipeline.
type IngestionResult struct {
	Records int      `json:"count"`
	Sources []string `json:"sources"`
}
