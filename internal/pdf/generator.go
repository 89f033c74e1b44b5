package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/decoraops/quotation-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

func (g *Generator) Generate(doc model.QuotationDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "SALES QUOTATION", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Quotation %s dated %s", doc.Quotation.QuotationNumber, safeValue(doc.Quotation.Date)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", doc.Quotation.Status), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addCustomerBlock(pdf, g.fontName, doc.Customer)
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, "Sales executive", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 5, safeValue(doc.SalesExecutiveName), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Items", "", 1, "L", false, 0, "")

	headers := []string{"Item no.", "Product", "Qty", "Unit price", "Line total"}
	colWidths := []float64{25, 75, 18, 31, 31}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, item := range doc.Quotation.Items {
		row := []string{
			safeValue(item.ItemNo),
			item.ProductName,
			fmt.Sprintf("%d", item.Quantity),
			formatAmount(item.UnitPrice),
			formatAmount(item.LineTotal),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pricing := doc.Quotation.Pricing
	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Subtotal: %s", formatAmount(pricing.Subtotal)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Tax (%.2f%%): %s", pricing.TaxRate*100, formatAmount(pricing.TaxAmount)), "", 1, "R", false, 0, "")
	if pricing.DiscountAmount > 0 {
		pdf.CellFormat(0, 6, fmt.Sprintf("Discount: -%s", formatAmount(pricing.DiscountAmount)), "", 1, "R", false, 0, "")
	}
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Grand total: %s", formatAmount(pricing.GrandTotal)), "", 1, "R", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Mean match confidence: %.0f%%", doc.MeanConfidence*100), "", 1, "L", false, 0, "")

	if len(doc.Quotation.Terms) > 0 {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Terms", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		for _, term := range doc.Quotation.Terms {
			pdf.MultiCell(0, 5, "- "+term, "", "L", false)
		}
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Prepared by: ______________________ /%s/", safeValue(doc.SalesExecutiveName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Accepted by: ______________________ /%s/", safeValue(doc.Customer.Name)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addCustomerBlock(pdf *gofpdf.Fpdf, fontName string, customer model.Customer) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		customer.Name,
		fmt.Sprintf("Email: %s", safeValue(customer.Email)),
		fmt.Sprintf("Phone: %s", safeValue(customer.Phone)),
		fmt.Sprintf("Address: %s", safeValue(customer.Address)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
