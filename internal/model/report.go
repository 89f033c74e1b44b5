package model

// QuotationDocument bundles everything the PDF rendering needs.
type QuotationDocument struct {
	Quotation          PersistedQuotation
	Customer           Customer
	SalesExecutiveName string
	MeanConfidence     float64
}

// SalesBook is the export view of one sales executive's quotations.
type SalesBook struct {
	SalesExecutiveID   string
	SalesExecutiveName string
	Quotations         []PersistedQuotation
	CustomerNames      map[string]string
}
