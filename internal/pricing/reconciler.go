package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/decoraops/quotation-service/internal/model"
)

var (
	ErrInvalidLineItem = errors.New("invalid line item")
	ErrInvalidRate     = errors.New("invalid pricing rate")
)

// Reconciler computes pricing summaries. It is pure: no I/O, no state beyond
// the configured minor unit of the working currency.
type Reconciler struct {
	minorUnitFactor float64
}

// NewReconciler takes the exponent of the currency's minor unit, e.g. 2 for
// currencies with hundredths.
func NewReconciler(minorUnitExponent int) *Reconciler {
	if minorUnitExponent < 0 {
		minorUnitExponent = 0
	}
	return &Reconciler{minorUnitFactor: math.Pow(10, float64(minorUnitExponent))}
}

// Reconcile computes subtotal, tax and grand total for the given items.
// The subtotal is the exact sum of quantity*unitPrice; only the tax amount is
// rounded (half-up, to the minor unit). The grand total is recomputed from
// its components every time and clamped at zero. An empty item list yields
// all zeros.
func (r *Reconciler) Reconcile(items []model.LineItem, taxRate, discountAmount float64) (model.PricingSummary, error) {
	if taxRate < 0 || taxRate > 1 {
		return model.PricingSummary{}, fmt.Errorf("%w: tax rate %v outside [0,1]", ErrInvalidRate, taxRate)
	}
	if discountAmount < 0 {
		return model.PricingSummary{}, fmt.Errorf("%w: discount %v is negative", ErrInvalidRate, discountAmount)
	}

	subtotal := 0.0
	for i, item := range items {
		if item.Quantity <= 0 {
			return model.PricingSummary{}, fmt.Errorf("%w: item %d has quantity %d", ErrInvalidLineItem, i, item.Quantity)
		}
		if item.UnitPrice < 0 {
			return model.PricingSummary{}, fmt.Errorf("%w: item %d has unit price %v", ErrInvalidLineItem, i, item.UnitPrice)
		}
		subtotal += float64(item.Quantity) * item.UnitPrice
	}

	taxAmount := r.RoundMinorUnit(subtotal * taxRate)
	grandTotal := subtotal + taxAmount - discountAmount
	if grandTotal < 0 {
		grandTotal = 0
	}

	return model.PricingSummary{
		Subtotal:       subtotal,
		TaxRate:        taxRate,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		GrandTotal:     grandTotal,
	}, nil
}

// RoundMinorUnit rounds half-up to the currency's minor unit.
func (r *Reconciler) RoundMinorUnit(v float64) float64 {
	return math.Floor(v*r.minorUnitFactor+0.5) / r.minorUnitFactor
}

// MeanConfidence aggregates match confidence for reporting. Individual item
// confidences are never modified.
func MeanConfidence(items []model.LineItem) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, item := range items {
		sum += item.MatchConfidence
	}
	return sum / float64(len(items))
}

// MergeIdenticalItems collapses rows that matched the same product, summing
// quantities and line totals. The merge key is productId, falling back to
// itemNo and then the product name. A merged row keeps the highest confidence
// among its sources. Input order of first occurrence is preserved.
func MergeIdenticalItems(items []model.LineItem) []model.LineItem {
	merged := make([]model.LineItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		key := item.ProductID
		if key == "" {
			key = item.ItemNo
		}
		if key == "" {
			key = item.ProductName
		}

		if pos, ok := index[key]; ok {
			merged[pos].Quantity += item.Quantity
			merged[pos].LineTotal += item.LineTotal
			if item.MatchConfidence > merged[pos].MatchConfidence {
				merged[pos].MatchConfidence = item.MatchConfidence
			}
			continue
		}

		merged = append(merged, item)
		index[key] = len(merged) - 1
	}

	return merged
}
