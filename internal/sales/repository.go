package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lns-erp/lns-erp/internal/platform/db"
	"github.com/lns-erp/lns-erp/internal/shared"
)

// ErrNotFound indicates a missing pipeline record. It wraps the shared
// sentinel so callers can match on shared.ErrNotFound across domains.
var ErrNotFound = fmt.Errorf("pipeline record: %w", shared.ErrNotFound)

// Repository provides persistence for the sales pipeline.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)

	GetBusinessUnit(ctx context.Context, id int64) (*BusinessUnit, error)
	ListBusinessUnits(ctx context.Context) ([]BusinessUnit, error)

	CreateInquiry(ctx context.Context, inquiry Inquiry) (int64, error)
	SetInquiryCode(ctx context.Context, id int64, code string) error
	UpdateInquiryStatus(ctx context.Context, id int64, status InquiryStatus) error
	GetInquiry(ctx context.Context, id int64) (*Inquiry, error)
	ListInquiries(ctx context.Context, req ListInquiriesRequest) ([]Inquiry, int, error)

	CreateQuotation(ctx context.Context, quotation Quotation) (int64, error)
	GetQuotation(ctx context.Context, id int64) (*Quotation, error)
	UpdateQuotation(ctx context.Context, id int64, updates map[string]interface{}) error
	CountQuotationRevisions(ctx context.Context, inquiryID int64) (int, error)

	InsertNegotiation(ctx context.Context, negotiation Negotiation) (int64, error)
	ListNegotiations(ctx context.Context, quotationID int64) ([]Negotiation, error)

	CreatePurchaseOrder(ctx context.Context, po PurchaseOrder) (int64, error)
	SetPurchaseOrderCode(ctx context.Context, id int64, code string) error
	GetPurchaseOrder(ctx context.Context, id int64) (*PurchaseOrder, error)
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

func (r *repository) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM customers WHERE id = $1
	`, id)
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM customers ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *repository) GetBusinessUnit(ctx context.Context, id int64) (*BusinessUnit, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, description FROM business_units WHERE id = $1`, id)
	var u BusinessUnit
	err := row.Scan(&u.ID, &u.Name, &u.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) ListBusinessUnits(ctx context.Context) ([]BusinessUnit, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description FROM business_units ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []BusinessUnit
	for rows.Next() {
		var u BusinessUnit
		if err := rows.Scan(&u.ID, &u.Name, &u.Description); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *repository) CreateInquiry(ctx context.Context, inquiry Inquiry) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO inquiries (code, customer_id, business_unit_id, inquiry_date, status, created_at, updated_at)
		VALUES ('', $1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`, inquiry.CustomerID, inquiry.BusinessUnitID, inquiry.InquiryDate, inquiry.Status).Scan(&id)
	return id, err
}

func (r *repository) SetInquiryCode(ctx context.Context, id int64, code string) error {
	_, err := r.db.Exec(ctx, `UPDATE inquiries SET code = $1, updated_at = NOW() WHERE id = $2`, code, id)
	return err
}

func (r *repository) UpdateInquiryStatus(ctx context.Context, id int64, status InquiryStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE inquiries SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) GetInquiry(ctx context.Context, id int64) (*Inquiry, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, code, customer_id, business_unit_id, inquiry_date, status, created_at, updated_at
		FROM inquiries WHERE id = $1
	`, id)
	var i Inquiry
	err := row.Scan(&i.ID, &i.Code, &i.CustomerID, &i.BusinessUnitID, &i.InquiryDate, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *repository) ListInquiries(ctx context.Context, req ListInquiriesRequest) ([]Inquiry, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argPos := 1

	if req.BusinessUnitID != nil {
		where += " AND business_unit_id = $" + itoa(argPos)
		args = append(args, *req.BusinessUnitID)
		argPos++
	}
	if req.Status != nil {
		where += " AND status = $" + itoa(argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM inquiries "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, code, customer_id, business_unit_id, inquiry_date, status, created_at, updated_at
		FROM inquiries ` + where + `
		ORDER BY inquiry_date DESC, id DESC
		LIMIT $` + itoa(argPos) + ` OFFSET $` + itoa(argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var inquiries []Inquiry
	for rows.Next() {
		var i Inquiry
		if err := rows.Scan(&i.ID, &i.Code, &i.CustomerID, &i.BusinessUnitID, &i.InquiryDate, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, 0, err
		}
		inquiries = append(inquiries, i)
	}
	return inquiries, total, rows.Err()
}

func (r *repository) CreateQuotation(ctx context.Context, quotation Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (code, inquiry_id, amount, status, revision, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`, quotation.Code, quotation.InquiryID, quotation.Amount, quotation.Status, quotation.Revision, quotation.DueDate).Scan(&id)
	return id, err
}

func (r *repository) GetQuotation(ctx context.Context, id int64) (*Quotation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, code, inquiry_id, amount, status, revision, due_date, created_at, updated_at
		FROM quotations WHERE id = $1
	`, id)
	var q Quotation
	err := row.Scan(&q.ID, &q.Code, &q.InquiryID, &q.Amount, &q.Status, &q.Revision, &q.DueDate, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) UpdateQuotation(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE quotations SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, column := range []string{"code", "amount", "status", "revision", "due_date"} {
		if v, ok := updates[column]; ok {
			query += ", " + column + " = $" + itoa(argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += " WHERE id = $" + itoa(argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountQuotationRevisions(ctx context.Context, inquiryID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotations WHERE inquiry_id = $1`, inquiryID).Scan(&count)
	return count, err
}

func (r *repository) InsertNegotiation(ctx context.Context, negotiation Negotiation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO negotiations (quotation_id, amount, file_key, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`, negotiation.QuotationID, negotiation.Amount, negotiation.FileKey).Scan(&id)
	return id, err
}

func (r *repository) ListNegotiations(ctx context.Context, quotationID int64) ([]Negotiation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, amount, file_key, created_at
		FROM negotiations WHERE quotation_id = $1
		ORDER BY created_at ASC, id ASC
	`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var negotiations []Negotiation
	for rows.Next() {
		var n Negotiation
		if err := rows.Scan(&n.ID, &n.QuotationID, &n.Amount, &n.FileKey, &n.CreatedAt); err != nil {
			return nil, err
		}
		negotiations = append(negotiations, n)
	}
	return negotiations, rows.Err()
}

func (r *repository) CreatePurchaseOrder(ctx context.Context, po PurchaseOrder) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO purchase_orders (code, quotation_id, amount, status, date, created_at, updated_at)
		VALUES ('', $1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`, po.QuotationID, po.Amount, po.Status, po.Date).Scan(&id)
	return id, err
}

func (r *repository) SetPurchaseOrderCode(ctx context.Context, id int64, code string) error {
	_, err := r.db.Exec(ctx, `UPDATE purchase_orders SET code = $1, updated_at = NOW() WHERE id = $2`, code, id)
	return err
}

func (r *repository) GetPurchaseOrder(ctx context.Context, id int64) (*PurchaseOrder, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, code, quotation_id, amount, status, date, created_at, updated_at
		FROM purchase_orders WHERE id = $1
	`, id)
	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.Code, &po.QuotationID, &po.Amount, &po.Status, &po.Date, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
