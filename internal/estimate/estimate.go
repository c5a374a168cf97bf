// Package estimate prices a booking selection against the service catalog.
// Calculation is pure: the same catalog and selection always produce the
// same estimate, and the total always equals the sum of breakdown lines.
package estimate

import (
	"fmt"
	"math"

	"storecrew/internal/models"
)

// Selection is what the customer picked on the form.
type Selection struct {
	ServiceType string
	Options     map[string]int // option id -> quantity
	Modifiers   []string       // modifier ids
}

// UnknownIDError reports a selection entry that is not in the catalog.
// Callers must reject the request instead of silently dropping the entry.
type UnknownIDError struct {
	Field string // "service_type", "options" or "modifiers"
	ID    string
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Field, e.ID)
}

// InvalidQuantityError reports an option quantity below zero. Like
// UnknownIDError it is client input, not a server fault.
type InvalidQuantityError struct {
	ID       string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("option %s: invalid quantity %d", e.ID, e.Quantity)
}

// Calculate builds the estimate in a fixed order: service base price, option
// lines in catalog order, fixed fees, then percentage discounts. Each
// discount applies to the running subtotal and is emitted as a negative line.
// An empty selection yields a zero total and an empty breakdown.
func Calculate(cat *models.Catalog, sel Selection) (models.Estimate, error) {
	est := models.Estimate{Currency: cat.Currency}

	if sel.ServiceType != "" {
		svc, ok := cat.ServiceByID(sel.ServiceType)
		if !ok {
			return models.Estimate{}, &UnknownIDError{Field: "service_type", ID: sel.ServiceType}
		}
		est.Breakdown = append(est.Breakdown, models.EstimateLine{Label: svc.Label, Amount: svc.BasePrice})
	}

	seen := 0
	for _, opt := range cat.Options {
		qty, ok := sel.Options[opt.ID]
		if !ok {
			continue
		}
		seen++
		if qty < 0 {
			return models.Estimate{}, &InvalidQuantityError{ID: opt.ID, Quantity: qty}
		}
		if qty == 0 {
			continue
		}
		label := opt.Label
		if qty > 1 {
			label = fmt.Sprintf("%s ×%d", opt.Label, qty)
		}
		est.Breakdown = append(est.Breakdown, models.EstimateLine{Label: label, Amount: opt.UnitPrice * int64(qty)})
	}
	if seen != len(sel.Options) {
		for id := range sel.Options {
			if _, ok := cat.OptionByID(id); !ok {
				return models.Estimate{}, &UnknownIDError{Field: "options", ID: id}
			}
		}
	}

	subtotal := sumLines(est.Breakdown)

	// Fixed fees before percentage discounts.
	for _, id := range sel.Modifiers {
		mod, ok := cat.ModifierByID(id)
		if !ok {
			return models.Estimate{}, &UnknownIDError{Field: "modifiers", ID: id}
		}
		if mod.Kind != models.ModifierFee {
			continue
		}
		est.Breakdown = append(est.Breakdown, models.EstimateLine{Label: mod.Label, Amount: mod.Amount})
		subtotal += mod.Amount
	}

	for _, id := range sel.Modifiers {
		mod, _ := cat.ModifierByID(id)
		if mod.Kind != models.ModifierDiscount {
			continue
		}
		amount := int64(math.Round(float64(subtotal) * mod.Percent / 100.0))
		est.Breakdown = append(est.Breakdown, models.EstimateLine{Label: mod.Label, Amount: -amount})
		subtotal -= amount
	}

	est.Total = sumLines(est.Breakdown)
	return est, nil
}

func sumLines(lines []models.EstimateLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Amount
	}
	return total
}
