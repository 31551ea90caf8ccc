package pgdb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"startup-funding-api/internal/clock"
	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo/repo_errors"
	"startup-funding-api/internal/storetest"
	"startup-funding-api/internal/validation"
	"startup-funding-api/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newPartyRepo(t *testing.T) (*PartyRepo, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewPartyRepo(storetest.Open(t), clk, validation.New()), clk
}

func TestCreateAndResolveParties(t *testing.T) {
	r, _ := newPartyRepo(t)
	ctx := context.Background()

	if _, err := r.CreateStartup(ctx, &entity.CreateStartupInput{StartupId: "ST1", Name: "Acme Robotics"}); err != nil {
		t.Fatalf("create startup: %v", err)
	}
	if _, err := r.CreateInvestor(ctx, &entity.CreateInvestorInput{InvestorId: "IN1", Name: "Northwind Capital"}); err != nil {
		t.Fatalf("create investor: %v", err)
	}

	startup, err := r.GetStartupByKey(ctx, "ST1")
	if err != nil {
		t.Fatalf("get startup: %v", err)
	}
	if startup.Name != "Acme Robotics" || startup.StartupId != "ST1" {
		t.Fatalf("startup %+v", startup)
	}

	investor, err := r.GetInvestorByKey(ctx, "IN1")
	if err != nil {
		t.Fatalf("get investor: %v", err)
	}
	if investor.Name != "Northwind Capital" {
		t.Fatalf("investor %+v", investor)
	}

	if _, err := r.GetStartupByKey(ctx, "nope"); !errors.Is(err, repo_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.GetInvestorByKey(ctx, "nope"); !errors.Is(err, repo_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateStartupDuplicateKey(t *testing.T) {
	r, _ := newPartyRepo(t)
	ctx := context.Background()

	input := &entity.CreateStartupInput{StartupId: "ST1", Name: "Acme"}
	if _, err := r.CreateStartup(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.CreateStartup(ctx, input); !errors.Is(err, repo_errors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateInvestorValidates(t *testing.T) {
	r, _ := newPartyRepo(t)

	_, err := r.CreateInvestor(context.Background(), &entity.CreateInvestorInput{InvestorId: "IN1"})
	var verr *validation.ValidationError
	if !errors.As(err, &verr) || !verr.Has("Name") {
		t.Fatalf("expected Name violation, got %v", err)
	}
}

func TestGetStartupNamesBatch(t *testing.T) {
	r, _ := newPartyRepo(t)
	ctx := context.Background()

	for id, name := range map[entity.StartupID]string{"ST1": "Acme", "ST2": "Globex"} {
		if _, err := r.CreateStartup(ctx, &entity.CreateStartupInput{StartupId: id, Name: name}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	names, err := r.GetStartupNames(ctx, []entity.StartupID{"ST1", "ST2", "ST1", "ghost"})
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 || names["ST1"] != "Acme" || names["ST2"] != "Globex" {
		t.Fatalf("names %v", names)
	}
	if _, ok := names["ghost"]; ok {
		t.Fatalf("unknown key resolved")
	}

	empty, err := r.GetStartupNames(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty lookup: %v %v", empty, err)
	}
}

func TestFundingHistory(t *testing.T) {
	r, clk := newPartyRepo(t)
	ctx := context.Background()

	first := &entity.FundingRecord{InvestorId: "IN1", BidId: uuid.New(), CompanyName: "Acme", Amount: decimal.NewFromInt(100000), Year: 2025}
	if err := r.AppendFunding(ctx, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	clk.Advance(time.Hour)
	second := &entity.FundingRecord{InvestorId: "IN1", BidId: uuid.New(), CompanyName: "Globex", Amount: decimal.RequireFromString("2500.50"), Year: 2026}
	if err := r.AppendFunding(ctx, second); err != nil {
		t.Fatalf("append second: %v", err)
	}
	other := &entity.FundingRecord{InvestorId: "IN2", BidId: uuid.New(), CompanyName: "Initech", Amount: decimal.NewFromInt(1), Year: 2026}
	if err := r.AppendFunding(ctx, other); err != nil {
		t.Fatalf("append other: %v", err)
	}

	history, err := r.GetInvestorFunding(ctx, "IN1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].CompanyName != "Acme" || history[0].Year != 2025 || !history[0].Amount.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("first entry %+v", history[0])
	}
	if history[1].CompanyName != "Globex" || !history[1].Amount.Equal(decimal.RequireFromString("2500.50")) {
		t.Fatalf("second entry %+v", history[1])
	}
	if history[1].BidId != second.BidId {
		t.Fatalf("bid id %s, want %s", history[1].BidId, second.BidId)
	}
}

func TestFundingHistoryKeepsInsertionOrderWithinOneInstant(t *testing.T) {
	r, _ := newPartyRepo(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		record := &entity.FundingRecord{InvestorId: "IN1", BidId: uuid.New(), CompanyName: fmt.Sprint(i), Amount: decimal.NewFromInt(10), Year: 2026}
		if err := r.AppendFunding(ctx, record); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	history, err := r.GetInvestorFunding(ctx, "IN1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for i, record := range history {
		if record.CompanyName != fmt.Sprint(i) {
			t.Fatalf("entry %d is %q", i, record.CompanyName)
		}
	}
}

func TestAppendFundingWithoutInvestorRecord(t *testing.T) {
	r, _ := newPartyRepo(t)
	ctx := context.Background()

	if _, err := r.GetInvestorByKey(ctx, "IN9"); !errors.Is(err, repo_errors.ErrNotFound) {
		t.Fatalf("expected no investor record, got %v", err)
	}

	amount := decimal.RequireFromString("9999999999999999.99")
	record := &entity.FundingRecord{InvestorId: "IN9", BidId: uuid.New(), CompanyName: "Acme", Amount: amount, Year: 2026}
	if err := r.AppendFunding(ctx, record); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := r.GetInvestorFunding(ctx, "IN9")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || !history[0].Amount.Equal(amount) {
		t.Fatalf("history %+v", history)
	}
}

func TestAppendFundingRefusesSecondEntryForBid(t *testing.T) {
	r, _ := newPartyRepo(t)
	ctx := context.Background()

	bidId := uuid.New()
	record := func() *entity.FundingRecord {
		return &entity.FundingRecord{InvestorId: "IN1", BidId: bidId, CompanyName: "Acme", Amount: decimal.NewFromInt(10), Year: 2026}
	}

	if err := r.AppendFunding(ctx, record()); err != nil {
		t.Fatalf("first: %v", err)
	}
	err := r.AppendFunding(ctx, record())
	if !database.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
