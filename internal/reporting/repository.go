package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TopCustomerRow is one grouped row from the purchase-order join.
type TopCustomerRow struct {
	CustomerID   int64
	CustomerName string
	TotalAmount  float64
	OrderCount   int
}

// Repository provides the filtered counts and joins behind the dashboards.
// A nil businessUnitID means unscoped ("all").
type Repository interface {
	CountInquiries(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error)
	CountValidQuotations(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error)
	CountPurchaseOrders(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error)
	CountExpiredQuotations(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error)
	TopCustomers(ctx context.Context, limit int, businessUnitID *int64) ([]TopCustomerRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on top of a pgx pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// excludedInquiryStatus is the literal the inquiry count filters out. The
// trailing space is load-bearing: legacy rows store 'closed ' and only those
// are excluded; a row whose status is 'closed' without the space still counts.
const excludedInquiryStatus = "closed "

func countInquiriesQuery(scoped bool) string {
	query := `
		SELECT COUNT(*) FROM inquiries
		WHERE status <> '` + excludedInquiryStatus + `'
		  AND created_at >= $1 AND created_at < $2
	`
	if scoped {
		query += ` AND business_unit_id = $3`
	}
	return query
}

// CountInquiries counts inquiries created in [from, to). Preserved as-is from
// the legacy reporting queries, trailing-space exclusion included.
func (r *repository) CountInquiries(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error) {
	query := countInquiriesQuery(businessUnitID != nil)
	args := []interface{}{from, to}
	if businessUnitID != nil {
		args = append(args, *businessUnitID)
	}
	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *repository) CountValidQuotations(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM quotations q
		JOIN inquiries i ON q.inquiry_id = i.id
		WHERE q.status = 'val'
		  AND q.created_at >= $1 AND q.created_at < $2
	`
	args := []interface{}{from, to}
	if businessUnitID != nil {
		query += ` AND i.business_unit_id = $3`
		args = append(args, *businessUnitID)
	}
	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *repository) CountPurchaseOrders(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM purchase_orders po
		JOIN quotations q ON po.quotation_id = q.id
		JOIN inquiries i ON q.inquiry_id = i.id
		WHERE po.created_at >= $1 AND po.created_at < $2
	`
	args := []interface{}{from, to}
	if businessUnitID != nil {
		query += ` AND i.business_unit_id = $3`
		args = append(args, *businessUnitID)
	}
	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *repository) CountExpiredQuotations(ctx context.Context, from, to time.Time, businessUnitID *int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM quotations q
		JOIN inquiries i ON q.inquiry_id = i.id
		WHERE q.status = 'wip'
		  AND q.due_date >= $1 AND q.due_date < $2
		  AND q.due_date < NOW()
	`
	args := []interface{}{from, to}
	if businessUnitID != nil {
		query += ` AND i.business_unit_id = $3`
		args = append(args, *businessUnitID)
	}
	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *repository) TopCustomers(ctx context.Context, limit int, businessUnitID *int64) ([]TopCustomerRow, error) {
	query := `
		SELECT c.id, c.name, COALESCE(SUM(po.amount), 0), COUNT(po.id)
		FROM purchase_orders po
		JOIN quotations q ON po.quotation_id = q.id
		JOIN inquiries i ON q.inquiry_id = i.id
		JOIN customers c ON i.customer_id = c.id
	`
	var args []interface{}
	if businessUnitID != nil {
		query += ` WHERE i.business_unit_id = $1`
		args = append(args, *businessUnitID)
	}
	query += `
		GROUP BY c.id, c.name
		ORDER BY SUM(po.amount) DESC
	`
	if businessUnitID != nil {
		query += ` LIMIT $2`
	} else {
		query += ` LIMIT $1`
	}
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TopCustomerRow
	for rows.Next() {
		var row TopCustomerRow
		if err := rows.Scan(&row.CustomerID, &row.CustomerName, &row.TotalAmount, &row.OrderCount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
