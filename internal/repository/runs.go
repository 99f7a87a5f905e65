package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/order-extractor/constants"
	"github.com/joseph-ayodele/order-extractor/internal/common"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

var runColumns = []string{
	"id", "source_path", "content_hash", "format", "profile", "status",
	"order_count", "product_count", "error_message", "started_at", "finished_at",
}

type RunRepository interface {
	Start(ctx context.Context, run *entity.Run) error
	Complete(ctx context.Context, run *entity.Run, orders []entity.Order, products []entity.ProductRecord) error
	Fail(ctx context.Context, run *entity.Run, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	List(ctx context.Context, limit int) ([]entity.Run, error)
	FindLatestByHash(ctx context.Context, hash, profile string) (*entity.Run, error)
}

type runRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewRunRepository(db *DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepo{db: db, logger: logger}
}

// Start inserts run with status RUNNING, assigning an id and start time when missing.
func (r *runRepo) Start(ctx context.Context, run *entity.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = constants.RunStatusRunning

	q, args := builder(r.db.Dialect()).Insert(tableRuns).
		Columns(runColumns...).
		Values(run.ID, run.SourcePath, run.ContentHash, run.Format, run.Profile, string(run.Status),
			run.OrderCount, run.ProductCount, run.ErrorMessage, run.StartedAt, run.FinishedAt).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("run start failed", "source_path", run.SourcePath, "error", err)
		return dbError("insert run", err)
	}
	r.logger.Info("run started", "run_id", run.ID, "profile", run.Profile, "source_path", run.SourcePath)
	return nil
}

// Complete stores the extracted rows and marks the run SUCCEEDED, or EMPTY when there are
// none, in one transaction.
func (r *runRepo) Complete(ctx context.Context, run *entity.Run, orders []entity.Order, products []entity.ProductRecord) error {
	now := time.Now().UTC()
	status := constants.RunStatusSucceeded
	if len(orders) == 0 && len(products) == 0 {
		status = constants.RunStatusEmpty
	}

	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		if err := insertOrders(ctx, tx, r.db.Dialect(), run.ID, orders); err != nil {
			return err
		}
		if err := insertProducts(ctx, tx, r.db.Dialect(), run.ID, products); err != nil {
			return err
		}
		q, args := builder(r.db.Dialect()).Update(tableRuns).
			Set("status", string(status)).
			Set("order_count", len(orders)).
			Set("product_count", len(products)).
			Set("finished_at", now).
			SetNull("error_message").
			Where(entsql.EQ("id", run.ID)).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return dbError("update run", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("run complete failed", "run_id", run.ID, "error", err)
		return err
	}

	run.Status = status
	run.OrderCount = len(orders)
	run.ProductCount = len(products)
	run.FinishedAt = &now
	run.ErrorMessage = nil
	r.logger.Info("run finished", "run_id", run.ID, "status", status, "orders", len(orders), "products", len(products))
	return nil
}

func (r *runRepo) Fail(ctx context.Context, run *entity.Run, message string) error {
	now := time.Now().UTC()
	q, args := builder(r.db.Dialect()).Update(tableRuns).
		Set("status", string(constants.RunStatusFailed)).
		Set("error_message", message).
		Set("finished_at", now).
		Where(entsql.EQ("id", run.ID)).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("run fail update failed", "run_id", run.ID, "error", err)
		return dbError("update run", err)
	}
	run.Status = constants.RunStatusFailed
	run.ErrorMessage = &message
	run.FinishedAt = &now
	r.logger.Warn("run finished (FAILED)", "run_id", run.ID, "error", message)
	return nil
}

func (r *runRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	b := builder(r.db.Dialect())
	q, args := b.Select(runColumns...).From(b.Table(tableRuns)).Where(entsql.EQ("id", id)).Query()
	runs, err := r.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", "run "+id.String(), common.ErrNotFound)
	}
	return &runs[0], nil
}

// List returns the most recent runs first. limit <= 0 means 50.
func (r *runRepo) List(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	b := builder(r.db.Dialect())
	q, args := b.Select(runColumns...).From(b.Table(tableRuns)).
		OrderBy(entsql.Desc("started_at")).
		Limit(limit).
		Query()
	return r.query(ctx, q, args)
}

// FindLatestByHash returns the newest finished, non-failed run of the same content and
// profile.
func (r *runRepo) FindLatestByHash(ctx context.Context, hash, profile string) (*entity.Run, error) {
	b := builder(r.db.Dialect())
	q, args := b.Select(runColumns...).From(b.Table(tableRuns)).
		Where(entsql.And(
			entsql.EQ("content_hash", hash),
			entsql.EQ("profile", profile),
			entsql.In("status", string(constants.RunStatusSucceeded), string(constants.RunStatusEmpty)),
		)).
		OrderBy(entsql.Desc("started_at")).
		Limit(1).
		Query()
	runs, err := r.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", "run for hash "+hash, common.ErrNotFound)
	}
	return &runs[0], nil
}

func (r *runRepo) query(ctx context.Context, q string, args []any) ([]entity.Run, error) {
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, dbError("query runs", err)
	}
	defer rows.Close()

	var out []entity.Run
	for rows.Next() {
		var (
			run      entity.Run
			status   string
			errMsg   sql.NullString
			finished sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.SourcePath, &run.ContentHash, &run.Format, &run.Profile, &status,
			&run.OrderCount, &run.ProductCount, &errMsg, &run.StartedAt, &finished); err != nil {
			return nil, dbError("scan run", err)
		}
		run.Status = constants.RunStatus(status)
		if errMsg.Valid {
			run.ErrorMessage = &errMsg.String
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate runs", err)
	}
	return out, nil
}
