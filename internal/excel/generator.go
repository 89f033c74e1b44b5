package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/decoraops/quotation-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(book model.SalesBook) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, book); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, quotation := range book.Quotations {
		sheetName := buildSheetName(quotation.QuotationNumber, quotation.ID.String(), usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeDetail(file, sheetName, book, quotation); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, book model.SalesBook) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Sales executive")
	set("B1", book.SalesExecutiveName)
	set("A2", "Quotations")
	set("B2", len(book.Quotations))
	set("A3", "Total value")
	set("B3", formatAmount(sumBookTotal(book)))

	tableRow := 5
	headers := []string{"Quotation", "Date", "Customer", "Status", "Grand total"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, quotation := range book.Quotations {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), quotation.QuotationNumber)
		set(fmt.Sprintf("B%d", row), quotation.Date)
		set(fmt.Sprintf("C%d", row), book.CustomerNames[quotation.CustomerID.String()])
		set(fmt.Sprintf("D%d", row), string(quotation.Status))
		set(fmt.Sprintf("E%d", row), formatAmount(quotation.Pricing.GrandTotal))
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "B", 14)
	_ = file.SetColWidth(sheet, "C", "C", 32)
	_ = file.SetColWidth(sheet, "D", "D", 14)
	_ = file.SetColWidth(sheet, "E", "E", 14)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, book model.SalesBook, quotation model.PersistedQuotation) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Quotation")
	set("B1", quotation.QuotationNumber)
	set("A2", "Customer")
	set("B2", book.CustomerNames[quotation.CustomerID.String()])
	set("A3", "Date")
	set("B3", quotation.Date)
	set("A4", "Status")
	set("B4", string(quotation.Status))
	set("A5", "Created")
	set("B5", formatDateTime(quotation.CreatedAt))

	tableRow := 7
	headers := []string{
		"Item no.",
		"Product",
		"Quantity",
		"Unit price",
		"Line total",
		"Confidence",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, item := range quotation.Items {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), item.ItemNo)
		set(fmt.Sprintf("B%d", row), item.ProductName)
		set(fmt.Sprintf("C%d", row), item.Quantity)
		set(fmt.Sprintf("D%d", row), formatAmount(item.UnitPrice))
		set(fmt.Sprintf("E%d", row), formatAmount(item.LineTotal))
		set(fmt.Sprintf("F%d", row), fmt.Sprintf("%.0f%%", item.MatchConfidence*100))
	}

	totalsRow := tableRow + len(quotation.Items) + 2
	set(fmt.Sprintf("D%d", totalsRow), "Subtotal")
	set(fmt.Sprintf("E%d", totalsRow), formatAmount(quotation.Pricing.Subtotal))
	set(fmt.Sprintf("D%d", totalsRow+1), fmt.Sprintf("Tax (%.2f%%)", quotation.Pricing.TaxRate*100))
	set(fmt.Sprintf("E%d", totalsRow+1), formatAmount(quotation.Pricing.TaxAmount))
	set(fmt.Sprintf("D%d", totalsRow+2), "Discount")
	set(fmt.Sprintf("E%d", totalsRow+2), formatAmount(quotation.Pricing.DiscountAmount))
	set(fmt.Sprintf("D%d", totalsRow+3), "Grand total")
	set(fmt.Sprintf("E%d", totalsRow+3), formatAmount(quotation.Pricing.GrandTotal))

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "F", 14)
	return nil
}

func buildSheetName(number, id string, used map[string]struct{}) string {
	base := strings.TrimSpace(number)
	if base == "" {
		base = id
	}
	base = sanitizeSheetName(base)

	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func sumBookTotal(book model.SalesBook) float64 {
	total := 0.0
	for _, quotation := range book.Quotations {
		total += quotation.Pricing.GrandTotal
	}
	return total
}
