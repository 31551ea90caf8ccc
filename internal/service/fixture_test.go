package service

import (
	"context"
	"testing"
	"time"

	"startup-funding-api/internal/clock"
	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo"
	"startup-funding-api/internal/storetest"
	"startup-funding-api/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type fixture struct {
	repos   *repo.Repositories
	clock   *clock.FakeClock
	metrics *Metrics
	bids    *BidService
	query   *QueryService
}

func newFixture(t *testing.T, wrap ...func(*repo.Repositories)) *fixture {
	t.Helper()

	clk := clock.Fake(time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC))
	repos := repo.NewRepositories(storetest.Open(t), clk, validation.New())
	for _, w := range wrap {
		w(repos)
	}

	deps := Dependencies{
		Repos:   repos,
		Clock:   clk,
		Metrics: NewMetrics(prometheus.NewRegistry()),
	}

	return &fixture{
		repos:   repos,
		clock:   clk,
		metrics: deps.Metrics,
		bids:    NewBidService(deps),
		query:   NewQueryService(deps),
	}
}

func (f *fixture) startup(t *testing.T, id entity.StartupID, name string) {
	t.Helper()
	if _, err := f.repos.Party.CreateStartup(context.Background(), &entity.CreateStartupInput{StartupId: id, Name: name}); err != nil {
		t.Fatalf("seed startup %s: %v", id, err)
	}
}

func (f *fixture) submit(t *testing.T, startup entity.StartupID, investor entity.InvestorID) *entity.BidOutputModel {
	t.Helper()
	f.clock.Advance(time.Second)
	bid, err := f.bids.SubmitOffer(context.Background(), &entity.NewBidInput{
		StartupId:  startup,
		InvestorId: investor,
		Amount:     decimal.NewFromInt(100000),
		Equity:     10,
		Royalty:    5,
	})
	if err != nil {
		t.Fatalf("submit %s/%s: %v", startup, investor, err)
	}
	return bid
}

func (f *fixture) status(t *testing.T, bidId string) entity.BidStatus {
	t.Helper()
	bid, err := f.bids.GetBid(context.Background(), bidId)
	if err != nil {
		t.Fatalf("get %s: %v", bidId, err)
	}
	return entity.BidStatus(bid.Status)
}

func (f *fixture) funding(t *testing.T, investor entity.InvestorID) []entity.FundingRecord {
	t.Helper()
	records, err := f.repos.Party.GetInvestorFunding(context.Background(), investor)
	if err != nil {
		t.Fatalf("funding %s: %v", investor, err)
	}
	return records
}
