// Package sales models the inquiry → quotation → negotiation → purchase
// order pipeline for LNS engineering services and generates the business
// document codes attached to each record.
package sales

import "time"

// InquiryStatus enumerates inquiry pipeline states.
type InquiryStatus string

const (
	InquiryStatusPending  InquiryStatus = "pending"
	InquiryStatusProcess  InquiryStatus = "process"
	InquiryStatusCanceled InquiryStatus = "canceled"
	InquiryStatusNoQuot   InquiryStatus = "no_quot"
)

// QuotationStatus enumerates quotation states.
type QuotationStatus string

const (
	QuotationStatusNA    QuotationStatus = "n/a"
	QuotationStatusValid QuotationStatus = "val"
	QuotationStatusLost  QuotationStatus = "lost"
	QuotationStatusClosd QuotationStatus = "clsd"
	QuotationStatusWIP   QuotationStatus = "wip"
)

// PurchaseOrderStatus enumerates purchase order states.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusWIP PurchaseOrderStatus = "wip"
	PurchaseOrderStatusAR  PurchaseOrderStatus = "ar"
	PurchaseOrderStatusIBT PurchaseOrderStatus = "ibt"
)

// Customer is a buying organization referenced by inquiries.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BusinessUnit is an organizational subdivision scoping the pipeline.
type BusinessUnit struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Inquiry opens the pipeline for one customer request.
type Inquiry struct {
	ID             int64         `json:"id"`
	Code           string        `json:"code"`
	CustomerID     int64         `json:"customer_id"`
	BusinessUnitID int64         `json:"business_unit_id"`
	InquiryDate    time.Time     `json:"inquiry_date"`
	Status         InquiryStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Quotation is the priced offer for an inquiry. Amount tracks the latest
// negotiation and Revision counts code regenerations.
type Quotation struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	InquiryID int64           `json:"inquiry_id"`
	Amount    float64         `json:"amount"`
	Status    QuotationStatus `json:"status"`
	Revision  int             `json:"revision"`
	DueDate   time.Time       `json:"due_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Negotiation records one agreed amount revision on a quotation, optionally
// with an attachment stored by the external file collaborator.
type Negotiation struct {
	ID          int64     `json:"id"`
	QuotationID int64     `json:"quotation_id"`
	Amount      float64   `json:"amount"`
	FileKey     *string   `json:"file_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PurchaseOrder closes the pipeline for a quotation.
type PurchaseOrder struct {
	ID          int64               `json:"id"`
	Code        string              `json:"code"`
	QuotationID int64               `json:"quotation_id"`
	Amount      float64             `json:"amount"`
	Status      PurchaseOrderStatus `json:"status"`
	Date        time.Time           `json:"date"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
