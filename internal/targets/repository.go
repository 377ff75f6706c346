package targets

import (
	"context"
	"errors"
	"fmt"

	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lns-erp/lns-erp/internal/platform/db"
	"github.com/lns-erp/lns-erp/internal/shared"
)

var (
	ErrNotFound  = fmt.Errorf("target slot: %w", shared.ErrNotFound)
	ErrSlotTaken = errors.New("target already recorded for that month and year")
)

// Repository provides persistence for target slots.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context) ([]TargetSlot, error)
	Get(ctx context.Context, id int64) (*TargetSlot, error)
	FindSlot(ctx context.Context, month, year int, businessUnitID int64) (*TargetSlot, error)
	Create(ctx context.Context, slot TargetSlot) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on top of a pgx pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const slotColumns = `id, month, year, business_unit_id, target, actual, difference, percentage, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]TargetSlot, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM company_growth_selling
		ORDER BY year DESC, month DESC, business_unit_id ASC
	`, slotColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []TargetSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*TargetSlot, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM company_growth_selling WHERE id = $1
	`, slotColumns), id)
	slot, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func (r *repository) FindSlot(ctx context.Context, month, year int, businessUnitID int64) (*TargetSlot, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM company_growth_selling
		WHERE month = $1 AND year = $2 AND business_unit_id = $3
	`, slotColumns), month, year, businessUnitID)
	slot, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func (r *repository) Create(ctx context.Context, slot TargetSlot) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO company_growth_selling
			(month, year, business_unit_id, target, actual, difference, percentage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`, slot.Month, slot.Year, slot.BusinessUnitID, slot.Target, slot.Actual, slot.Difference, slot.Percentage).Scan(&id)
	if err != nil {
		return 0, mapConstraintError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE company_growth_selling SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, column := range []string{"month", "year", "business_unit_id", "target", "actual", "difference", "percentage"} {
		if v, ok := updates[column]; ok {
			query += fmt.Sprintf(", %s = $%d", column, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM company_growth_selling WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapConstraintError converts a unique-violation on the (month, year, unit)
// key into ErrSlotTaken. Callers pre-check the slot before writing, so this
// only fires on concurrent writers racing the same key.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlotTaken
	}
	var pgErrV1 *pgconnv1.PgError
	if errors.As(err, &pgErrV1) && pgErrV1.Code == "23505" {
		return ErrSlotTaken
	}
	return err
}

func scanSlot(row pgx.Row) (TargetSlot, error) {
	var slot TargetSlot
	err := row.Scan(
		&slot.ID, &slot.Month, &slot.Year, &slot.BusinessUnitID,
		&slot.Target, &slot.Actual, &slot.Difference, &slot.Percentage,
		&slot.CreatedAt, &slot.UpdatedAt,
	)
	return slot, err
}
