package ingestion

import (
	"database/sql"

	"github.com/Ramsey-B/dahlia/pkg/database"
)

const (
	platformTable     = "platform"
	productTable      = "product"
	customerTable     = "customer"
	addressTable      = "customer_address_details"
	ordersTable       = "orders"
	orderDetailsTable = "order_details"
	projectionView    = "mv_order_details"
)

// PlatformRow is a platform read back after insert
type PlatformRow struct {
	ID   sql.NullInt64  `db:"id"`
	Name sql.NullString `db:"name"`
}

// ProductRow is a product read back after insert
type ProductRow struct {
	PK         sql.NullInt64  `db:"pk"`
	ID         sql.NullString `db:"id"`
	Name       sql.NullString `db:"name"`
	Category   sql.NullString `db:"category"`
	PlatformID sql.NullInt64  `db:"platform_id"`
}

var (
	platformStruct = database.NewStruct(new(PlatformRow))
	productStruct  = database.NewStruct(new(ProductRow))
)

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v int64, ok bool) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: ok}
}
