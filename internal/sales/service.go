package sales

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lns-erp/lns-erp/internal/shared"
)

// Service implements pipeline operations and document code generation.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// ListCustomers returns customer options for forms.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// ListBusinessUnits returns business unit options for forms and scoping.
func (s *Service) ListBusinessUnits(ctx context.Context) ([]BusinessUnit, error) {
	return s.repo.ListBusinessUnits(ctx)
}

// CreateInquiry opens an inquiry and assigns its document code. The code
// embeds the generated id, so the insert and the code assignment share one
// transaction.
func (s *Service) CreateInquiry(ctx context.Context, req CreateInquiryRequest) (*Inquiry, error) {
	if _, err := s.repo.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	if _, err := s.repo.GetBusinessUnit(ctx, req.BusinessUnitID); err != nil {
		return nil, fmt.Errorf("verify business unit: %w", err)
	}

	var inquiryID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.CreateInquiry(ctx, Inquiry{
			CustomerID:     req.CustomerID,
			BusinessUnitID: req.BusinessUnitID,
			InquiryDate:    req.InquiryDate,
			Status:         InquiryStatusPending,
		})
		if err != nil {
			return fmt.Errorf("create inquiry: %w", err)
		}
		inquiryID = id
		return repo.SetInquiryCode(ctx, id, shared.InquiryCode(id, req.InquiryDate))
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetInquiry(ctx, inquiryID)
}

// GetInquiry returns one inquiry.
func (s *Service) GetInquiry(ctx context.Context, id int64) (*Inquiry, error) {
	return s.repo.GetInquiry(ctx, id)
}

// ListInquiries returns a filtered page of inquiries with the total count.
func (s *Service) ListInquiries(ctx context.Context, req ListInquiriesRequest) ([]Inquiry, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.ListInquiries(ctx, req)
}

// CreateQuotation prices an inquiry. The quotation code carries the revision
// index among quotations for that inquiry, and the inquiry moves to process.
func (s *Service) CreateQuotation(ctx context.Context, req CreateQuotationRequest) (*Quotation, error) {
	inquiry, err := s.repo.GetInquiry(ctx, req.InquiryID)
	if err != nil {
		return nil, fmt.Errorf("verify inquiry: %w", err)
	}

	status := req.Status
	if status == "" {
		status = QuotationStatusWIP
	}

	var quotationID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		prior, err := repo.CountQuotationRevisions(ctx, inquiry.ID)
		if err != nil {
			return fmt.Errorf("count revisions: %w", err)
		}
		revision := prior + 1

		id, err := repo.CreateQuotation(ctx, Quotation{
			Code:      shared.QuotationCode(inquiry.ID, revision, s.now()),
			InquiryID: inquiry.ID,
			Amount:    req.Amount,
			Status:    status,
			Revision:  revision,
			DueDate:   req.DueDate,
		})
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		quotationID = id

		if inquiry.Status == InquiryStatusPending {
			if err := repo.UpdateInquiryStatus(ctx, inquiry.ID, InquiryStatusProcess); err != nil {
				return fmt.Errorf("advance inquiry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetQuotation(ctx, quotationID)
}

// GetQuotation returns one quotation.
func (s *Service) GetQuotation(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.GetQuotation(ctx, id)
}

// ListNegotiations returns the negotiation history of a quotation.
func (s *Service) ListNegotiations(ctx context.Context, quotationID int64) ([]Negotiation, error) {
	return s.repo.ListNegotiations(ctx, quotationID)
}

// RecordNegotiation inserts a negotiation and cascades onto the parent
// quotation: its amount is overwritten with the negotiated figure and its
// code regenerated with the next revision index. Insert and cascade share
// one transaction, and the updated quotation snapshot is returned so the
// cascade stays observable at the call site.
func (s *Service) RecordNegotiation(ctx context.Context, quotationID int64, req RecordNegotiationRequest) (*NegotiationOutcome, error) {
	quotation, err := s.repo.GetQuotation(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("verify quotation: %w", err)
	}

	negotiation := Negotiation{
		QuotationID: quotation.ID,
		Amount:      req.Amount,
	}
	if req.FileName != "" {
		key := attachmentKey(req.FileName)
		negotiation.FileKey = &key
	}

	recordedAt := s.now()
	revision := quotation.Revision + 1

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.InsertNegotiation(ctx, negotiation)
		if err != nil {
			return fmt.Errorf("insert negotiation: %w", err)
		}
		negotiation.ID = id

		return repo.UpdateQuotation(ctx, quotation.ID, map[string]interface{}{
			"amount":   req.Amount,
			"revision": revision,
			"code":     shared.QuotationCode(quotation.InquiryID, revision, recordedAt),
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetQuotation(ctx, quotation.ID)
	if err != nil {
		return nil, err
	}
	return &NegotiationOutcome{Negotiation: negotiation, Quotation: *updated}, nil
}

// CreatePurchaseOrder closes a quotation with a purchase order and assigns
// its document code.
func (s *Service) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrder, error) {
	if _, err := s.repo.GetQuotation(ctx, req.QuotationID); err != nil {
		return nil, fmt.Errorf("verify quotation: %w", err)
	}

	status := req.Status
	if status == "" {
		status = PurchaseOrderStatusWIP
	}

	var poID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.CreatePurchaseOrder(ctx, PurchaseOrder{
			QuotationID: req.QuotationID,
			Amount:      req.Amount,
			Status:      status,
			Date:        req.Date,
		})
		if err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		poID = id
		return repo.SetPurchaseOrderCode(ctx, id, shared.PurchaseOrderCode(id, req.Date))
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetPurchaseOrder(ctx, poID)
}

// attachmentKey mints the stored object key for a negotiation attachment.
func attachmentKey(fileName string) string {
	return "negotiations/" + uuid.NewString() + filepath.Ext(fileName)
}
