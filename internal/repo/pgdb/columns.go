package pgdb

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// newId returns a time-ordered id, so "id" breaks timestamp ties in insertion
// order within the process.
func newId() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// Amounts are stored as integer cents; validation keeps them to two decimals.
func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
