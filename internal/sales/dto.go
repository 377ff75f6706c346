package sales

import "time"

// CreateInquiryRequest opens a new inquiry.
type CreateInquiryRequest struct {
	CustomerID     int64     `json:"customer_id" validate:"required"`
	BusinessUnitID int64     `json:"business_unit_id" validate:"required"`
	InquiryDate    time.Time `json:"inquiry_date" validate:"required"`
}

// ListInquiriesRequest filters the inquiry listing.
type ListInquiriesRequest struct {
	BusinessUnitID *int64
	Status         *InquiryStatus
	Limit          int
	Offset         int
}

// CreateQuotationRequest prices an inquiry.
type CreateQuotationRequest struct {
	InquiryID int64           `json:"inquiry_id" validate:"required"`
	Amount    float64         `json:"amount" validate:"required,gt=0"`
	Status    QuotationStatus `json:"status" validate:"omitempty,oneof=n/a val lost clsd wip"`
	DueDate   time.Time       `json:"due_date" validate:"required"`
}

// RecordNegotiationRequest records an agreed amount on a quotation. FileName
// is the client-supplied attachment name; the stored key is minted here and
// the bytes live with the external file collaborator.
type RecordNegotiationRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	FileName string  `json:"file_name" validate:"omitempty,max=255"`
}

// CreatePurchaseOrderRequest closes a quotation with a purchase order.
type CreatePurchaseOrderRequest struct {
	QuotationID int64               `json:"quotation_id" validate:"required"`
	Amount      float64             `json:"amount" validate:"required,gt=0"`
	Status      PurchaseOrderStatus `json:"status" validate:"omitempty,oneof=wip ar ibt"`
	Date        time.Time           `json:"date" validate:"required"`
}

// NegotiationOutcome is the observable result of RecordNegotiation: the
// stored negotiation plus the updated quotation snapshot it cascaded into.
type NegotiationOutcome struct {
	Negotiation Negotiation `json:"negotiation"`
	Quotation   Quotation   `json:"quotation"`
}
