package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// AdjustmentKind says which direction an adjustment moves the price
type AdjustmentKind string

const (
	AdjustmentKindCost     AdjustmentKind = "cost"
	AdjustmentKindDiscount AdjustmentKind = "discount"
)

// IsValid checks if the adjustment kind is valid
func (k AdjustmentKind) IsValid() bool {
	return k == AdjustmentKindCost || k == AdjustmentKindDiscount
}

// AdjustmentMode says how an adjustment value is interpreted
type AdjustmentMode string

const (
	AdjustmentModeAmount     AdjustmentMode = "amount"
	AdjustmentModePercentage AdjustmentMode = "percentage"
)

// IsValid checks if the adjustment mode is valid
func (m AdjustmentMode) IsValid() bool {
	return m == AdjustmentModeAmount || m == AdjustmentModePercentage
}

// Adjustment is one ordered surcharge or discount line on an order.
// Percentage adjustments apply to the running subtotal at their
// position in the list, so order matters.
type Adjustment struct {
	Label string          `json:"label"`
	Kind  AdjustmentKind  `json:"kind"`
	Mode  AdjustmentMode  `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// Validate checks the adjustment fields
func (a Adjustment) Validate() error {
	if !a.Kind.IsValid() {
		return errors.New("invalid adjustment kind")
	}
	if !a.Mode.IsValid() {
		return errors.New("invalid adjustment mode")
	}
	if a.Value.IsNegative() {
		return errors.New("adjustment value cannot be negative")
	}
	return nil
}

// Adjustments is stored as a JSONB column
type Adjustments []Adjustment

// Value implements driver.Valuer for JSONB storage
func (a Adjustments) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB retrieval
func (a *Adjustments) Scan(value interface{}) error {
	if value == nil {
		*a = Adjustments{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Adjustments: unsupported type")
	}

	if len(bytes) == 0 {
		*a = Adjustments{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}
