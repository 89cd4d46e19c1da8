package ingestion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/normalize"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
	"github.com/lib/pq"
)

// IngestionRepository writes derived batches
type IngestionRepository interface {
	Save(ctx context.Context, batch *normalize.Batch) (*SaveResult, error)
}

// SaveResult counts the rows actually inserted per table.
type SaveResult struct {
	Inserted map[string]int64
}

// Repository implements IngestionRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new ingestion repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Save writes the batch in foreign key order inside one transaction and
// refreshes the order projection before committing. Existing rows are never
// updated; conflicting inserts are dropped.
func (r *Repository) Save(ctx context.Context, batch *normalize.Batch) (*SaveResult, error) {
	ctx, span := tracing.StartSpan(ctx, "IngestionRepository.Save")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	result := &SaveResult{Inserted: map[string]int64{}}

	platformIDs, err := r.savePlatforms(ctx, tx, batch.Platforms, result)
	if err != nil {
		return nil, err
	}

	productPKs, err := r.saveProducts(ctx, tx, batch.Products, platformIDs, result)
	if err != nil {
		return nil, err
	}

	customers := database.NewBulkInsert(customerTable, "id", "name", "contact_email", "platform_id").OnConflictDoNothing("id")
	for _, customer := range batch.Customers {
		platformID, ok := platformIDs[customer.Platform]
		customers.Add(customer.ID, nullString(customer.Name), nullString(customer.ContactEmail), nullInt64(platformID, ok))
	}
	if err := r.exec(ctx, tx, customers, result); err != nil {
		return nil, err
	}

	addresses := database.NewBulkInsert(addressTable, "id", "street", "city", "state", "pincode", "customer_id").OnConflictDoNothing("id")
	for _, address := range batch.Addresses {
		addresses.Add(address.ID, address.Street, address.City, address.State, address.Pincode, address.CustomerID)
	}
	if err := r.exec(ctx, tx, addresses, result); err != nil {
		return nil, err
	}

	orders := database.NewBulkInsert(ordersTable,
		"id", "date_of_sale", "customer_id", "customer_address_details_id",
		"platform_id", "delivery_date", "delivery_status", "meta_data",
	).OnConflictDoNothing("id")
	for _, order := range batch.Orders {
		platformID, ok := platformIDs[order.Platform]
		if !ok {
			return nil, r.missingKey(ctx, "platform", order.Platform)
		}
		orders.Add(
			order.ID,
			order.DateOfSale.Format(models.DateLayout),
			order.CustomerID,
			order.AddressID,
			platformID,
			order.DeliveryDate.Format(models.DateLayout),
			nullString(order.DeliveryStatus),
			database.JSONB[map[string]any]{Data: order.MetaData},
		)
	}
	if err := r.exec(ctx, tx, orders, result); err != nil {
		return nil, err
	}

	lines := database.NewBulkInsert(orderDetailsTable, "order_id", "product_pk", "selling_price", "quantity")
	for _, line := range batch.Lines {
		pk, ok := productPKs[line.Product]
		if !ok {
			return nil, r.missingKey(ctx, "product", line.Product.ID)
		}
		lines.Add(line.OrderID, pk, line.SellingPrice, line.Quantity)
	}
	if err := r.exec(ctx, tx, lines, result); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "REFRESH MATERIALIZED VIEW "+projectionView); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to refresh order projection")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to refresh order projection")
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit ingestion")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit ingestion")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"inserted": result.Inserted,
		"records":  batch.RecordCount,
	}).Info("Saved ingestion batch")

	return result, nil
}

func (r *Repository) savePlatforms(ctx context.Context, tx database.Tx, names []string, result *SaveResult) (map[string]int64, error) {
	ids := map[string]int64{}
	if len(names) == 0 {
		return ids, nil
	}

	platforms := database.NewBulkInsert(platformTable, "name").OnConflictDoNothing("name")
	for _, name := range names {
		platforms.Add(name)
	}
	if err := r.exec(ctx, tx, platforms, result); err != nil {
		return nil, err
	}

	sb := platformStruct.SelectFrom(platformTable)
	sb.Where(sb.AnyOf("name", pq.Array(names)))
	query, args := sb.Build()

	var rows []PlatformRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read back platforms")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read platforms")
	}
	for _, row := range rows {
		ids[row.Name.String] = row.ID.Int64
	}

	return ids, nil
}

func (r *Repository) saveProducts(ctx context.Context, tx database.Tx, products []models.ProductKey, platformIDs map[string]int64, result *SaveResult) (map[models.ProductKey]int64, error) {
	pks := map[models.ProductKey]int64{}
	if len(products) == 0 {
		return pks, nil
	}

	bulk := database.NewBulkInsert(productTable, "id", "name", "category", "platform_id").
		OnConflictDoNothing("id", "name", "category", "platform_id")
	for _, product := range products {
		platformID, ok := platformIDs[product.Platform]
		if !ok {
			return nil, r.missingKey(ctx, "platform", product.Platform)
		}
		bulk.Add(product.ID, product.Name, product.Category, platformID)
	}
	if err := r.exec(ctx, tx, bulk, result); err != nil {
		return nil, err
	}

	platformNames := make(map[int64]string, len(platformIDs))
	for name, id := range platformIDs {
		platformNames[id] = name
	}

	ids := ectolinq.Map(products, func(p models.ProductKey) string {
		return p.ID
	})
	sb := productStruct.SelectFrom(productTable)
	sb.Where(sb.AnyOf("id", pq.Array(ids)))
	query, args := sb.Build()

	var rows []ProductRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read back products")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read products")
	}
	for _, row := range rows {
		name, ok := platformNames[row.PlatformID.Int64]
		if !ok {
			continue
		}
		pks[models.ProductKey{
			ID:       row.ID.String,
			Name:     row.Name.String,
			Category: row.Category.String,
			Platform: name,
		}] = row.PK.Int64
	}

	return pks, nil
}

func (r *Repository) exec(ctx context.Context, tx database.Tx, bulk *database.BulkInsert, result *SaveResult) error {
	for _, statement := range bulk.Statements() {
		res, err := tx.ExecContext(ctx, statement.Query, statement.Args...)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table": bulk.Table,
				"rows":  bulk.Len(),
			}).Error("Failed to insert rows")
			return httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("failed to insert %s rows", bulk.Table))
		}
		if affected, err := res.RowsAffected(); err == nil {
			result.Inserted[bulk.Table] += affected
		}
	}
	return nil
}

func (r *Repository) missingKey(ctx context.Context, entity, key string) error {
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"entity": entity,
		"key":    key,
	}).Error("Referenced row was not found after insert")
	return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to resolve %s %s", entity, key)
}
