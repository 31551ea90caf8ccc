package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestListForStartupNewestCreatedFirst(t *testing.T) {
	f := newFixture(t)
	older := f.submit(t, "ST1", "IN1")
	newer := f.submit(t, "ST1", "IN2")
	f.submit(t, "ST2", "IN1")

	bids, err := f.query.ListForStartup(context.Background(), "ST1", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bids) != 2 || bids[0].Id != newer.Id || bids[1].Id != older.Id {
		t.Fatalf("unexpected order: %+v", bids)
	}

	empty, err := f.query.ListForStartup(context.Background(), "nobody", nil)
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}
}

func TestListForInvestorEnrichesAndFallsBack(t *testing.T) {
	f := newFixture(t)
	f.startup(t, "ST1", "Acme Robotics")
	known := f.submit(t, "ST1", "IN1")
	unknown := f.submit(t, "ghost", "IN1")

	bids, err := f.query.ListForInvestor(context.Background(), "IN1", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bids) != 2 {
		t.Fatalf("got %d bids", len(bids))
	}

	names := map[string]string{}
	for _, b := range bids {
		names[b.Id] = b.StartupName
	}
	if names[known.Id] != "Acme Robotics" {
		t.Fatalf("known startup name %q", names[known.Id])
	}
	if names[unknown.Id] != entity.UnknownStartupName {
		t.Fatalf("unknown startup name %q", names[unknown.Id])
	}
	if got := testutil.ToFloat64(f.metrics.EnrichmentFallbacks); got != 1 {
		t.Fatalf("fallback counter %v", got)
	}
}

func TestListForInvestorNewestUpdatedFirst(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, "ST1", "IN1")
	second := f.submit(t, "ST2", "IN1")

	f.clock.Advance(time.Minute)
	if _, err := f.bids.Negotiate(context.Background(), first.Id, "ST1", "still interested?"); err != nil {
		t.Fatalf("negotiate: %v", err)
	}

	bids, err := f.query.ListForInvestor(context.Background(), "IN1", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bids) != 2 || bids[0].Id != first.Id || bids[1].Id != second.Id {
		t.Fatalf("unexpected order: %s, %s", bids[0].Id, bids[1].Id)
	}
}

type failingBatchNames struct {
	repo.Party
}

func (failingBatchNames) GetStartupNames(context.Context, []entity.StartupID) (map[entity.StartupID]string, error) {
	return nil, errors.New("batch lookup unavailable")
}

func TestEnrichmentFallsBackPerRecordWhenBatchFails(t *testing.T) {
	f := newFixture(t, func(r *repo.Repositories) { r.Party = failingBatchNames{r.Party} })
	f.startup(t, "ST1", "Acme Robotics")
	f.submit(t, "ST1", "IN1")
	f.submit(t, "ST1", "IN1")
	f.submit(t, "ghost", "IN1")

	bids, err := f.query.ListForInvestor(context.Background(), "IN1", nil)
	if err != nil {
		t.Fatalf("list must not fail: %v", err)
	}

	resolved, placeholder := 0, 0
	for _, b := range bids {
		switch b.StartupName {
		case "Acme Robotics":
			resolved++
		case entity.UnknownStartupName:
			placeholder++
		}
	}
	if resolved != 2 || placeholder != 1 {
		t.Fatalf("resolved=%d placeholder=%d", resolved, placeholder)
	}
}

func TestListRejectedForInvestorShowsOnlySupersededBids(t *testing.T) {
	f := newFixture(t)
	f.startup(t, "ST1", "Acme Robotics")
	f.startup(t, "ST2", "Globex")

	winner := f.submit(t, "ST1", "IN2")
	superseded := f.submit(t, "ST1", "IN1")
	declined := f.submit(t, "ST2", "IN1")
	f.submit(t, "ST2", "IN1")

	if _, err := f.bids.AcceptOffer(context.Background(), winner.Id, "ST1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := f.bids.RejectOffer(context.Background(), declined.Id, "ST2"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	rejected, err := f.query.ListRejectedForInvestor(context.Background(), "IN1", nil)
	if err != nil {
		t.Fatalf("list rejected: %v", err)
	}
	if len(rejected) != 1 {
		t.Fatalf("expected one rejected bid, got %+v", rejected)
	}
	if rejected[0].Id != superseded.Id || rejected[0].Status != "rejected" || rejected[0].StartupName != "Acme Robotics" {
		t.Fatalf("rejected entry %+v", rejected[0])
	}

	all, err := f.query.ListForInvestor(context.Background(), "IN1", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, b := range all {
		if b.Id == declined.Id {
			t.Fatalf("declined bid is still listed")
		}
	}
}

func TestListBidsAndFunding(t *testing.T) {
	f := newFixture(t)
	f.startup(t, "ST1", "Acme Robotics")
	a := f.submit(t, "ST1", "IN1")
	f.submit(t, "ST2", "IN1")

	filtered, err := f.query.ListBids(context.Background(), entity.BidFilter{StartupId: "ST1"}, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Id != a.Id {
		t.Fatalf("filtered %+v", filtered)
	}

	page, err := f.query.ListBids(context.Background(), entity.BidFilter{}, entity.NewPaginationInput(1, 0))
	if err != nil || len(page) != 1 {
		t.Fatalf("page %d %v", len(page), err)
	}

	history, err := f.query.GetInvestorFunding(context.Background(), "IN1")
	if err != nil {
		t.Fatalf("funding: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("funding before accept: %+v", history)
	}
}
