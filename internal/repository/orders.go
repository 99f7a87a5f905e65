package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

// insertBatch bounds rows per INSERT so the placeholder count stays under driver limits.
const insertBatch = 500

type OrderRepository interface {
	ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.Order, error)
}

type orderRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewOrderRepository(db *DB, logger *slog.Logger) OrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderRepo{db: db, logger: logger}
}

// orderColumns are the per-field columns, named by the field keys.
func orderColumns() []string {
	cols := make([]string, len(entity.OrderFields))
	for i, f := range entity.OrderFields {
		cols[i] = f.Key()
	}
	return cols
}

func insertOrders(ctx context.Context, x dialect.ExecQuerier, d string, runID uuid.UUID, orders []entity.Order) error {
	cols := append([]string{"run_id", "line_no"}, orderColumns()...)
	for start := 0; start < len(orders); start += insertBatch {
		end := min(start+insertBatch, len(orders))
		ins := builder(d).Insert(tableOrders).Columns(cols...)
		for i := start; i < end; i++ {
			vals := []any{runID, i}
			for _, v := range orders[i].Values() {
				vals = append(vals, v)
			}
			ins.Values(vals...)
		}
		q, args := ins.Query()
		if err := x.Exec(ctx, q, args, nil); err != nil {
			return dbError("insert orders", err)
		}
	}
	return nil
}

func (r *orderRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.Order, error) {
	b := builder(r.db.Dialect())
	q, args := b.Select(orderColumns()...).From(b.Table(tableOrders)).
		Where(entsql.EQ("run_id", runID)).
		OrderBy("line_no").
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to list orders", "run_id", runID, "error", err)
		return nil, dbError("query orders", err)
	}
	defer rows.Close()

	var out []entity.Order
	for rows.Next() {
		vals := make([]string, len(entity.OrderFields))
		dest := make([]any, len(vals))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, dbError("scan order", err)
		}
		var o entity.Order
		for i, f := range entity.OrderFields {
			o.Set(f, vals[i])
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate orders", err)
	}
	return out, nil
}
