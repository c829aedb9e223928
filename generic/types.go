/*
Package generic provides the domain-agnostic primitives of the work-time engine.

PURPOSE:
  This package contains the small value types every other package builds on.
  Whether summing worked hours, target hours, or vacation days, quantities are
  carried as an Amount and calendar days as a Date, so arithmetic stays exact
  and comparisons stay at day granularity.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 7.5 hours, 30 days)
  - Unit:   Hours for time accounting, days for vacation entitlement

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift in sums
  2. Value semantics: Every operation returns a new Amount, nothing mutates
  3. Boundary conversion: float64 only appears in DTOs and backup blobs

USAGE:
  worked := generic.Hours(7.5)
  target := generic.Hours(8)
  overtime := worked.Sub(target) // -0.5 hours

SEE ALSO:
  - time.go: Date, the accounting key
  - period.go: Inclusive date ranges (week-to-date, month-to-date, month)
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours Unit = "hours"
	UnitDays  Unit = "days"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Hours is shorthand for NewAmount(value, UnitHours).
func Hours(value float64) Amount { return NewAmount(value, UnitHours) }

// Days is shorthand for NewAmount(value, UnitDays).
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

// ZeroHours is the additive identity for hour sums.
func ZeroHours() Amount { return Amount{Value: decimal.Zero, Unit: UnitHours} }

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Unit == b.Unit && a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

// Round rounds half away from zero to places decimal places.
func (a Amount) Round(places int32) Amount {
	return Amount{Value: a.Value.Round(places), Unit: a.Unit}
}

// Float64 converts for DTOs and backup blobs. Exactness is not guaranteed.
func (a Amount) Float64() float64 { return a.Value.InexactFloat64() }

func (a Amount) String() string { return a.Value.String() + " " + string(a.Unit) }
