package sales

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	customers      map[int64]Customer
	units          map[int64]BusinessUnit
	inquiries      map[int64]Inquiry
	quotations     map[int64]Quotation
	negotiations   map[int64]Negotiation
	purchaseOrders map[int64]PurchaseOrder
	nextID         int64
}

func newSalesRepo() *memRepo {
	return &memRepo{
		customers: map[int64]Customer{
			1: {ID: 1, Name: "PT Alpha"},
		},
		units: map[int64]BusinessUnit{
			1: {ID: 1, Name: "Machining"},
		},
		inquiries:      make(map[int64]Inquiry),
		quotations:     make(map[int64]Quotation),
		negotiations:   make(map[int64]Negotiation),
		purchaseOrders: make(map[int64]PurchaseOrder),
	}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) GetCustomer(_ context.Context, id int64) (*Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memRepo) ListCustomers(context.Context) ([]Customer, error) {
	out := make([]Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) GetBusinessUnit(_ context.Context, id int64) (*BusinessUnit, error) {
	u, ok := m.units[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memRepo) ListBusinessUnits(context.Context) ([]BusinessUnit, error) {
	out := make([]BusinessUnit, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, u)
	}
	return out, nil
}

func (m *memRepo) CreateInquiry(_ context.Context, inquiry Inquiry) (int64, error) {
	inquiry.ID = m.id()
	m.inquiries[inquiry.ID] = inquiry
	return inquiry.ID, nil
}

func (m *memRepo) SetInquiryCode(_ context.Context, id int64, code string) error {
	inquiry, ok := m.inquiries[id]
	if !ok {
		return ErrNotFound
	}
	inquiry.Code = code
	m.inquiries[id] = inquiry
	return nil
}

func (m *memRepo) UpdateInquiryStatus(_ context.Context, id int64, status InquiryStatus) error {
	inquiry, ok := m.inquiries[id]
	if !ok {
		return ErrNotFound
	}
	inquiry.Status = status
	m.inquiries[id] = inquiry
	return nil
}

func (m *memRepo) GetInquiry(_ context.Context, id int64) (*Inquiry, error) {
	inquiry, ok := m.inquiries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inquiry, nil
}

func (m *memRepo) ListInquiries(_ context.Context, req ListInquiriesRequest) ([]Inquiry, int, error) {
	var out []Inquiry
	for _, inquiry := range m.inquiries {
		if req.BusinessUnitID != nil && inquiry.BusinessUnitID != *req.BusinessUnitID {
			continue
		}
		if req.Status != nil && inquiry.Status != *req.Status {
			continue
		}
		out = append(out, inquiry)
	}
	return out, len(out), nil
}

func (m *memRepo) CreateQuotation(_ context.Context, quotation Quotation) (int64, error) {
	quotation.ID = m.id()
	m.quotations[quotation.ID] = quotation
	return quotation.ID, nil
}

func (m *memRepo) GetQuotation(_ context.Context, id int64) (*Quotation, error) {
	quotation, ok := m.quotations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &quotation, nil
}

func (m *memRepo) UpdateQuotation(_ context.Context, id int64, updates map[string]interface{}) error {
	quotation, ok := m.quotations[id]
	if !ok {
		return ErrNotFound
	}
	for column, value := range updates {
		switch column {
		case "amount":
			quotation.Amount = value.(float64)
		case "revision":
			quotation.Revision = value.(int)
		case "code":
			quotation.Code = value.(string)
		case "status":
			quotation.Status = value.(QuotationStatus)
		}
	}
	m.quotations[id] = quotation
	return nil
}

func (m *memRepo) CountQuotationRevisions(_ context.Context, inquiryID int64) (int, error) {
	count := 0
	for _, quotation := range m.quotations {
		if quotation.InquiryID == inquiryID {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) InsertNegotiation(_ context.Context, negotiation Negotiation) (int64, error) {
	negotiation.ID = m.id()
	m.negotiations[negotiation.ID] = negotiation
	return negotiation.ID, nil
}

func (m *memRepo) ListNegotiations(_ context.Context, quotationID int64) ([]Negotiation, error) {
	var out []Negotiation
	for _, negotiation := range m.negotiations {
		if negotiation.QuotationID == quotationID {
			out = append(out, negotiation)
		}
	}
	return out, nil
}

func (m *memRepo) CreatePurchaseOrder(_ context.Context, po PurchaseOrder) (int64, error) {
	po.ID = m.id()
	m.purchaseOrders[po.ID] = po
	return po.ID, nil
}

func (m *memRepo) SetPurchaseOrderCode(_ context.Context, id int64, code string) error {
	po, ok := m.purchaseOrders[id]
	if !ok {
		return ErrNotFound
	}
	po.Code = code
	m.purchaseOrders[id] = po
	return nil
}

func (m *memRepo) GetPurchaseOrder(_ context.Context, id int64) (*PurchaseOrder, error) {
	po, ok := m.purchaseOrders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &po, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreateInquiryAssignsCode(t *testing.T) {
	repo := newSalesRepo()
	svc := NewService(repo)

	inquiry, err := svc.CreateInquiry(context.Background(), CreateInquiryRequest{
		CustomerID:     1,
		BusinessUnitID: 1,
		InquiryDate:    time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "1/I/LNS/III/2024", inquiry.Code)
	assert.Equal(t, InquiryStatusPending, inquiry.Status)
}

func TestCreateInquiryRejectsUnknownCustomer(t *testing.T) {
	svc := NewService(newSalesRepo())

	_, err := svc.CreateInquiry(context.Background(), CreateInquiryRequest{
		CustomerID:     42,
		BusinessUnitID: 1,
		InquiryDate:    time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateQuotationAdvancesInquiry(t *testing.T) {
	repo := newSalesRepo()
	svc := NewService(repo)
	svc.WithNow(fixedClock(time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC)))

	inquiry, err := svc.CreateInquiry(context.Background(), CreateInquiryRequest{
		CustomerID:     1,
		BusinessUnitID: 1,
		InquiryDate:    time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	quotation, err := svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		InquiryID: inquiry.ID,
		Amount:    1_000_000,
		DueDate:   time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, quotation.Revision)
	assert.Equal(t, "1/Q1/LNS/XI/2025", quotation.Code)
	assert.Equal(t, QuotationStatusWIP, quotation.Status)

	advanced, err := svc.GetInquiry(context.Background(), inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, InquiryStatusProcess, advanced.Status)

	// A second quotation for the same inquiry takes the next revision.
	second, err := svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		InquiryID: inquiry.ID,
		Amount:    900_000,
		DueDate:   time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Revision)
	assert.Equal(t, "1/Q2/LNS/XI/2025", second.Code)
}

func TestRecordNegotiationCascadesToQuotation(t *testing.T) {
	repo := newSalesRepo()
	svc := NewService(repo)
	svc.WithNow(fixedClock(time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)))

	inquiry, err := svc.CreateInquiry(context.Background(), CreateInquiryRequest{
		CustomerID:     1,
		BusinessUnitID: 1,
		InquiryDate:    time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	quotation, err := svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		InquiryID: inquiry.ID,
		Amount:    2_000_000,
		DueDate:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	outcome, err := svc.RecordNegotiation(context.Background(), quotation.ID, RecordNegotiationRequest{
		Amount:   1_750_000,
		FileName: "agreement.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, 1_750_000.0, outcome.Negotiation.Amount)
	require.NotNil(t, outcome.Negotiation.FileKey)
	assert.True(t, strings.HasPrefix(*outcome.Negotiation.FileKey, "negotiations/"))
	assert.True(t, strings.HasSuffix(*outcome.Negotiation.FileKey, ".pdf"))

	// The cascade overwrote the quotation amount and regenerated its code.
	assert.Equal(t, 1_750_000.0, outcome.Quotation.Amount)
	assert.Equal(t, 2, outcome.Quotation.Revision)
	assert.Equal(t, "1/Q2/LNS/V/2024", outcome.Quotation.Code)
}

func TestCreatePurchaseOrderAssignsCode(t *testing.T) {
	repo := newSalesRepo()
	svc := NewService(repo)

	inquiry, err := svc.CreateInquiry(context.Background(), CreateInquiryRequest{
		CustomerID:     1,
		BusinessUnitID: 1,
		InquiryDate:    time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	quotation, err := svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		InquiryID: inquiry.ID,
		Amount:    500_000,
		DueDate:   time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderRequest{
		QuotationID: quotation.ID,
		Amount:      500_000,
		Date:        time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, PurchaseOrderStatusWIP, po.Status)
	assert.Equal(t, "3/PO/LNS/II/2024", po.Code)
}
