package inventory

import (
	"fmt"
	"strconv"

	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Quantity dimension names, used in errors and API payloads
const (
	DimensionWeight = "weight"
	DimensionCrates = "crates"
	DimensionBoxes  = "boxes"
)

// WeightScale is the number of decimal places kept for weights in kg
const WeightScale = 3

// Quantity is the vector a stock movement carries. Produce is counted in
// crates and boxes and weighed in kg; each dimension is tracked separately.
type Quantity struct {
	Weight decimal.Decimal `gorm:"column:weight;type:decimal(18,3);not null;default:0" json:"weight"`
	Crates int64           `gorm:"column:crates;not null;default:0" json:"crates"`
	Boxes  int64           `gorm:"column:boxes;not null;default:0" json:"boxes"`
}

// NewQuantity creates a quantity vector, rounding weight to WeightScale
func NewQuantity(weight decimal.Decimal, crates, boxes int64) Quantity {
	return Quantity{Weight: weight.Round(WeightScale), Crates: crates, Boxes: boxes}
}

// Weight creates a weight-only quantity
func Weight(kg decimal.Decimal) Quantity {
	return NewQuantity(kg, 0, 0)
}

// ZeroQuantity returns the empty vector
func ZeroQuantity() Quantity {
	return Quantity{Weight: decimal.Zero}
}

// IsZero returns true if every dimension is zero
func (q Quantity) IsZero() bool {
	return q.Weight.IsZero() && q.Crates == 0 && q.Boxes == 0
}

// Add returns q + o per dimension
func (q Quantity) Add(o Quantity) Quantity {
	return Quantity{Weight: q.Weight.Add(o.Weight), Crates: q.Crates + o.Crates, Boxes: q.Boxes + o.Boxes}
}

// Sub returns q - o per dimension
func (q Quantity) Sub(o Quantity) Quantity {
	return Quantity{Weight: q.Weight.Sub(o.Weight), Crates: q.Crates - o.Crates, Boxes: q.Boxes - o.Boxes}
}

// Equal compares every dimension
func (q Quantity) Equal(o Quantity) bool {
	return q.Weight.Equal(o.Weight) && q.Crates == o.Crates && q.Boxes == o.Boxes
}

// ClampZero floors every dimension at zero
func (q Quantity) ClampZero() Quantity {
	out := q
	if out.Weight.IsNegative() {
		out.Weight = decimal.Zero
	}
	if out.Crates < 0 {
		out.Crates = 0
	}
	if out.Boxes < 0 {
		out.Boxes = 0
	}
	return out
}

// Validate checks that a movement quantity is non-negative in every
// dimension and positive in at least one.
func (q Quantity) Validate() error {
	switch {
	case q.Weight.IsNegative():
		return shared.NewValidationError(DimensionWeight, "cannot be negative").WithExpected(">= 0", q.Weight.String())
	case q.Crates < 0:
		return shared.NewValidationError(DimensionCrates, "cannot be negative").WithExpected(">= 0", strconv.FormatInt(q.Crates, 10))
	case q.Boxes < 0:
		return shared.NewValidationError(DimensionBoxes, "cannot be negative").WithExpected(">= 0", strconv.FormatInt(q.Boxes, 10))
	case q.IsZero():
		return shared.NewValidationError("quantity", "at least one of weight, crates or boxes must be positive")
	}
	return nil
}

// Exceeding returns the first dimension in which q is larger than available,
// or "" if q fits.
func (q Quantity) Exceeding(available Quantity) (dimension, requested, have string) {
	switch {
	case q.Weight.GreaterThan(available.Weight):
		return DimensionWeight, q.Weight.String(), available.Weight.String()
	case q.Crates > available.Crates:
		return DimensionCrates, strconv.FormatInt(q.Crates, 10), strconv.FormatInt(available.Crates, 10)
	case q.Boxes > available.Boxes:
		return DimensionBoxes, strconv.FormatInt(q.Boxes, 10), strconv.FormatInt(available.Boxes, 10)
	}
	return "", "", ""
}

func (q Quantity) String() string {
	return fmt.Sprintf("%skg/%dcr/%dbx", q.Weight.String(), q.Crates, q.Boxes)
}
