package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

var productColumns = []string{
	"order_number", "supplier_code", "unit_price", "quantity", "unit", "description", "ean",
}

type ProductRepository interface {
	ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ProductRecord, error)
}

type productRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewProductRepository(db *DB, logger *slog.Logger) ProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &productRepo{db: db, logger: logger}
}

func insertProducts(ctx context.Context, x dialect.ExecQuerier, d string, runID uuid.UUID, products []entity.ProductRecord) error {
	cols := append([]string{"run_id", "line_no"}, productColumns...)
	for start := 0; start < len(products); start += insertBatch {
		end := min(start+insertBatch, len(products))
		ins := builder(d).Insert(tableProducts).Columns(cols...)
		for i := start; i < end; i++ {
			p := products[i]
			ins.Values(runID, i, p.OrderNumber, p.SupplierCode, p.UnitPrice, p.Quantity, p.Unit, p.Description, p.EAN)
		}
		q, args := ins.Query()
		if err := x.Exec(ctx, q, args, nil); err != nil {
			return dbError("insert products", err)
		}
	}
	return nil
}

func (r *productRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ProductRecord, error) {
	b := builder(r.db.Dialect())
	q, args := b.Select(productColumns...).From(b.Table(tableProducts)).
		Where(entsql.EQ("run_id", runID)).
		OrderBy("line_no").
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to list products", "run_id", runID, "error", err)
		return nil, dbError("query products", err)
	}
	defer rows.Close()

	var out []entity.ProductRecord
	for rows.Next() {
		var p entity.ProductRecord
		if err := rows.Scan(&p.OrderNumber, &p.SupplierCode, &p.UnitPrice, &p.Quantity, &p.Unit, &p.Description, &p.EAN); err != nil {
			return nil, dbError("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate products", err)
	}
	return out, nil
}
