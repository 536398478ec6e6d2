package invoice

import (
	"fmt"
	"strings"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/draft"
)

// StockViolation describes one line that breaches available stock.
type StockViolation struct {
	ItemID    id.ID `json:"itemId"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

// StockValidationError aggregates every offending line of a draft.
// Commit is refused as a whole; there is no partial commit of valid lines.
type StockValidationError struct {
	Violations []StockViolation
}

// Error implements error.
func (e *StockValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: requested %d, available %d", v.ItemID, v.Requested, v.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// ValidateStock checks a draft's lines against the current catalog snapshot
// before commit.
//
// Every line with a positive quantity must fit within the item's current
// availability. Lines with quantity <= 0 represent returns and always fit.
// Violations accumulate; the returned error enumerates all of them.
func ValidateStock(d *draft.Draft, snap *catalog.Snapshot) error {
	var violations []StockViolation

	for _, line := range d.Lines {
		if line.Quantity <= 0 {
			continue
		}

		available := snap.AvailableQty(line.ItemID)
		if line.Quantity > available {
			violations = append(violations, StockViolation{
				ItemID:    line.ItemID,
				Requested: line.Quantity,
				Available: available,
			})
		}
	}

	if len(violations) == 0 {
		return nil
	}

	return apperror.NewInsufficientStock("one or more lines exceed available stock").
		WithCause(&StockValidationError{Violations: violations}).
		WithDetail("violations", violations)
}
