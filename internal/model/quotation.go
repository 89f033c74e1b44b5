package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type QuotationStatus string

const (
	QuotationStatusPending    QuotationStatus = "pending"
	QuotationStatusApproved   QuotationStatus = "approved"
	QuotationStatusInProgress QuotationStatus = "in_progress"
)

func ParseQuotationStatus(raw string) (QuotationStatus, bool) {
	switch QuotationStatus(strings.TrimSpace(strings.ToLower(raw))) {
	case QuotationStatusPending, QuotationStatusApproved, QuotationStatusInProgress:
		return QuotationStatus(strings.TrimSpace(strings.ToLower(raw))), true
	default:
		return "", false
	}
}

// LineItem is one matched product row of a quotation. MatchConfidence is the
// extraction service's self-reported certainty and is carried through
// unmodified.
type LineItem struct {
	ItemNo          string  `json:"itemNo"`
	ProductName     string  `json:"product"`
	ProductID       string  `json:"productId"`
	ShortText       string  `json:"shortText"`
	ProductGroup    string  `json:"productGroup"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	Supplier        string  `json:"supplier"`
	Store           string  `json:"store"`
	MatchConfidence float64 `json:"match_confidence"`
	LineTotal       float64 `json:"line_total"`
}

type PricingSummary struct {
	Subtotal       float64 `json:"subtotal"`
	TaxRate        float64 `json:"taxRate"`
	TaxAmount      float64 `json:"taxAmount"`
	DiscountAmount float64 `json:"discountAmount"`
	GrandTotal     float64 `json:"grandTotal"`
}

// QuotationDraft is the in-memory, unpersisted result of extraction plus
// pricing. It is owned by the workflow until assignment persists it. Pricing
// is nil until reconciliation has run; the workflow refuses assignment while
// it is absent.
type QuotationDraft struct {
	QuotationNumber      string          `json:"quotationId"`
	Date                 string          `json:"date"`
	Validity             string          `json:"validity"`
	Items                []LineItem      `json:"items"`
	Pricing              *PricingSummary `json:"pricing"`
	Terms                []string        `json:"terms"`
	SourceDescription    string          `json:"sourceDescription"`
	CreatedBySalesUserID uuid.UUID       `json:"-"`
}

// PersistedQuotation is a draft that has been assigned to a customer and
// written to the store. From that point the store owns it; this core only
// reads it back and accepts status values.
type PersistedQuotation struct {
	ID               uuid.UUID       `json:"id"`
	QuotationNumber  string          `json:"quotationId"`
	CustomerID       uuid.UUID       `json:"customerId"`
	SalesExecutiveID uuid.UUID       `json:"salesExecutiveId"`
	Date             string          `json:"date"`
	Items            []LineItem      `json:"items"`
	Pricing          PricingSummary  `json:"pricing"`
	Terms            []string        `json:"terms"`
	Status           QuotationStatus `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
}

const quotationNumberPrefix = "QT-"

// NewQuotationNumber builds a human-facing quotation number like QT-3FA85F64.
func NewQuotationNumber() string {
	id := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return quotationNumberPrefix + hex[:8]
}

var StandardTerms = []string{
	"Quotation valid for 7 days.",
	"Delivery charges may apply.",
	"All items include standard manufacturer warranty.",
}
