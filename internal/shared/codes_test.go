package shared

import (
	"testing"
	"time"
)

func TestRomanMonth(t *testing.T) {
	cases := []struct {
		month time.Month
		want  string
	}{
		{time.January, "I"},
		{time.April, "IV"},
		{time.September, "IX"},
		{time.October, "X"},
		{time.December, "XII"},
	}
	for _, tc := range cases {
		if got := RomanMonth(tc.month); got != tc.want {
			t.Fatalf("RomanMonth(%v) = %q, want %q", tc.month, got, tc.want)
		}
	}
}

func TestInquiryCode(t *testing.T) {
	at := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	if got := InquiryCode(42, at); got != "42/I/LNS/III/2024" {
		t.Fatalf("unexpected inquiry code: %s", got)
	}
}

func TestQuotationCodeCarriesRevision(t *testing.T) {
	at := time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)
	if got := QuotationCode(42, 2, at); got != "42/Q2/LNS/XI/2025" {
		t.Fatalf("unexpected quotation code: %s", got)
	}
}

func TestMonthNameBounds(t *testing.T) {
	if got := MonthName(1); got != "January" {
		t.Fatalf("MonthName(1) = %q", got)
	}
	if got := MonthName(13); got != "" {
		t.Fatalf("MonthName(13) = %q, want empty", got)
	}
}
