package validation

import (
	"errors"
	"strings"
	"testing"

	"startup-funding-api/internal/entity"

	"github.com/shopspring/decimal"
)

func validBid() entity.NewBidInput {
	return entity.NewBidInput{
		StartupId:  "ST1",
		InvestorId: "IN1",
		Amount:     decimal.NewFromInt(100000),
		Equity:     10,
		Royalty:    5,
		Conditions: []string{"board seat"},
	}
}

func TestStructAcceptsValidBid(t *testing.T) {
	input := validBid()
	if err := New().Struct(input); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestStructAcceptsBoundaryPercentages(t *testing.T) {
	v := New()
	for _, pct := range []float64{0, 100} {
		input := validBid()
		input.Equity = pct
		input.Royalty = pct
		if err := v.Struct(input); err != nil {
			t.Fatalf("percentage %v: %v", pct, err)
		}
	}
}

func TestStructListsEveryViolatedField(t *testing.T) {
	input := entity.NewBidInput{
		Amount:  decimal.NewFromInt(-5),
		Equity:  101,
		Royalty: -0.5,
	}

	err := New().Struct(input)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	for _, field := range []string{"startupId", "investorId", "amount", "equity", "royalty"} {
		if !verr.Has(field) {
			t.Fatalf("expected violation for %s, got %+v", field, verr.Fields)
		}
	}
	if len(verr.Fields) != 5 {
		t.Fatalf("expected 5 violations, got %+v", verr.Fields)
	}
}

func TestStructRejectsZeroAmount(t *testing.T) {
	input := validBid()
	input.Amount = decimal.Zero

	err := New().Struct(input)
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("amount") {
		t.Fatalf("expected amount violation, got %v", err)
	}
	if !strings.Contains(verr.Error(), "should be greater than 0") {
		t.Fatalf("unexpected message: %s", verr.Error())
	}
}

func TestStructChecksAmountPrecisionAndRange(t *testing.T) {
	v := New()

	cases := []struct {
		amount string
		valid  bool
	}{
		{"0.01", true},
		{"2500.75", true},
		{"9999999999999999.99", true},
		{"0.001", false},
		{"2500.755", false},
		{"10000000000000000", false},
		{"12345678901234567.89", false},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			input := validBid()
			input.Amount = decimal.RequireFromString(tc.amount)

			err := v.Struct(&input)
			if tc.valid {
				if err != nil {
					t.Fatalf("expected valid amount, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) || !verr.Has("amount") {
				t.Fatalf("expected amount violation, got %v", err)
			}
			if !strings.Contains(verr.Error(), "at most 2 decimal places") {
				t.Fatalf("unexpected message: %s", verr.Error())
			}
		})
	}
}

func TestStructReportsConditionIndex(t *testing.T) {
	input := validBid()
	input.Conditions = []string{"ok", strings.Repeat("x", 1001)}

	err := New().Struct(input)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !verr.Has("conditions[1]") {
		t.Fatalf("expected conditions[1] violation, got %+v", verr.Fields)
	}
}
