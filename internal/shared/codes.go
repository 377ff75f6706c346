package shared

import (
	"fmt"
	"time"
)

var romanMonths = [...]string{
	"I", "II", "III", "IV", "V", "VI",
	"VII", "VIII", "IX", "X", "XI", "XII",
}

// RomanMonth returns the business-document Roman numeral for a calendar month.
func RomanMonth(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return romanMonths[month-1]
}

// InquiryCode formats the document number for an inquiry.
// Convention: {id}/I/LNS/{romanMonth}/{year}.
func InquiryCode(id int64, at time.Time) string {
	return fmt.Sprintf("%d/I/LNS/%s/%d", id, RomanMonth(at.Month()), at.Year())
}

// QuotationCode formats the document number for a quotation revision.
// Convention: {inquiryID}/Q{rev}/LNS/{romanMonth}/{year}, where rev is the
// sequence index among quotation revisions for that inquiry.
func QuotationCode(inquiryID int64, revision int, at time.Time) string {
	return fmt.Sprintf("%d/Q%d/LNS/%s/%d", inquiryID, revision, RomanMonth(at.Month()), at.Year())
}

// PurchaseOrderCode formats the document number for a purchase order.
// Convention: {id}/PO/LNS/{romanMonth}/{year}.
func PurchaseOrderCode(id int64, at time.Time) string {
	return fmt.Sprintf("%d/PO/LNS/%s/%d", id, RomanMonth(at.Month()), at.Year())
}

// MonthName returns the English month label used in form option lists.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}
