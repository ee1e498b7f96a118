package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MeasureUnit is the unit a cargo measure is expressed in
type MeasureUnit string

const (
	UnitKilogram   MeasureUnit = "KG"
	UnitCubicMeter MeasureUnit = "CBM"
)

// cm³ per m³
var cubicCentimetersPerCubicMeter = decimal.NewFromInt(1_000_000)

// Measure is a value object for cargo weights and volumes.
// It is immutable - all operations return new Measure instances.
// Values are carried at full precision and rounded to 3 decimal
// places at persistence and presentation boundaries.
type Measure struct {
	value decimal.Decimal
	unit  MeasureUnit
}

// NewMeasure creates a new Measure with the specified value and unit
func NewMeasure(value decimal.Decimal, unit MeasureUnit) (Measure, error) {
	if value.IsNegative() {
		return Measure{}, errors.New("measure cannot be negative")
	}
	if unit != UnitKilogram && unit != UnitCubicMeter {
		return Measure{}, fmt.Errorf("unsupported measure unit: %s", unit)
	}
	return Measure{
		value: value,
		unit:  unit,
	}, nil
}

// NewWeight creates a weight measure in kilograms
func NewWeight(kg decimal.Decimal) (Measure, error) {
	return NewMeasure(kg, UnitKilogram)
}

// NewWeightFromFloat creates a weight measure from a float64 value
func NewWeightFromFloat(kg float64) (Measure, error) {
	return NewMeasure(decimal.NewFromFloat(kg), UnitKilogram)
}

// NewVolume creates a volume measure in cubic meters
func NewVolume(cbm decimal.Decimal) (Measure, error) {
	return NewMeasure(cbm, UnitCubicMeter)
}

// NewVolumeFromDimensions derives a volume measure from package
// dimensions given in centimeters.
func NewVolumeFromDimensions(widthCm, depthCm, heightCm decimal.Decimal) (Measure, error) {
	if widthCm.IsNegative() || depthCm.IsNegative() || heightCm.IsNegative() {
		return Measure{}, errors.New("dimensions cannot be negative")
	}
	cbm := widthCm.Mul(depthCm).Mul(heightCm).Div(cubicCentimetersPerCubicMeter)
	return Measure{value: cbm, unit: UnitCubicMeter}, nil
}

// MustNewMeasure creates a Measure and panics on error
func MustNewMeasure(value decimal.Decimal, unit MeasureUnit) Measure {
	m, err := NewMeasure(value, unit)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMeasure returns a zero measure with the specified unit
func ZeroMeasure(unit MeasureUnit) Measure {
	return Measure{value: decimal.Zero, unit: unit}
}

// Amount returns the decimal value
func (m Measure) Amount() decimal.Decimal {
	return m.value
}

// Unit returns the unit of measurement
func (m Measure) Unit() MeasureUnit {
	return m.unit
}

// IsZero returns true if the measure is zero
func (m Measure) IsZero() bool {
	return m.value.IsZero()
}

// IsPositive returns true if the measure is positive
func (m Measure) IsPositive() bool {
	return m.value.IsPositive()
}

// Add returns a new Measure with the sum of both measures.
// Returns an error if units don't match.
func (m Measure) Add(other Measure) (Measure, error) {
	if m.unit != other.unit {
		return Measure{}, fmt.Errorf("cannot add measures with different units: %s and %s", m.unit, other.unit)
	}
	return Measure{
		value: m.value.Add(other.value),
		unit:  m.unit,
	}, nil
}

// MustAdd adds two measures, panics if units don't match
func (m Measure) MustAdd(other Measure) Measure {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply returns a new Measure multiplied by the given factor
func (m Measure) Multiply(factor decimal.Decimal) (Measure, error) {
	result := m.value.Mul(factor)
	if result.IsNegative() {
		return Measure{}, errors.New("resulting measure would be negative")
	}
	return Measure{
		value: result,
		unit:  m.unit,
	}, nil
}

// Round returns a new Measure rounded to the specified decimal places
func (m Measure) Round(places int32) Measure {
	return Measure{
		value: m.value.Round(places),
		unit:  m.unit,
	}
}

// Equals returns true if both measures are equal (same value and unit)
func (m Measure) Equals(other Measure) bool {
	return m.unit == other.unit && m.value.Equal(other.value)
}

// GreaterThan returns true if this measure is greater than the other
func (m Measure) GreaterThan(other Measure) (bool, error) {
	if m.unit != other.unit {
		return false, fmt.Errorf("cannot compare measures with different units: %s and %s", m.unit, other.unit)
	}
	return m.value.GreaterThan(other.value), nil
}

// String returns a string representation of the Measure
func (m Measure) String() string {
	return fmt.Sprintf("%s %s", m.value.StringFixed(3), m.unit)
}

// StringFixed returns the value as a string with fixed decimal places
func (m Measure) StringFixed(places int32) string {
	return m.value.StringFixed(places)
}

// MarshalJSON implements json.Marshaler
func (m Measure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value string      `json:"value"`
		Unit  MeasureUnit `json:"unit"`
	}{
		Value: m.value.StringFixed(3),
		Unit:  m.unit,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Negative values are
// rejected during unmarshaling to preserve the domain invariant.
func (m *Measure) UnmarshalJSON(data []byte) error {
	var v struct {
		Value string      `json:"value"`
		Unit  MeasureUnit `json:"unit"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	value, err := decimal.NewFromString(v.Value)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	if value.IsNegative() {
		return errors.New("measure cannot be negative")
	}
	m.value = value
	m.unit = v.Unit
	return nil
}

// Value implements driver.Valuer for database storage
func (m Measure) Value() (driver.Value, error) {
	return m.value.String(), nil
}

// Scan implements sql.Scanner. Only the numeric value is scanned;
// the unit lives in its own column or is implied by the field.
func (m *Measure) Scan(value any) error {
	if value == nil {
		m.value = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Measure", value)
	}

	val, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.value = val
	return nil
}
