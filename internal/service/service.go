package service

import (
	"context"
	"log/slog"

	"startup-funding-api/internal/clock"
	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo"

	"github.com/prometheus/client_golang/prometheus"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

// Bid is the lifecycle engine, the only writer of bid status.
type Bid interface {
	SubmitOffer(ctx context.Context, input *entity.NewBidInput) (*entity.BidOutputModel, error)
	AcceptOffer(ctx context.Context, bidId string, startupId entity.StartupID) (*entity.AcceptOutputModel, error)
	RejectOffer(ctx context.Context, bidId string, startupId entity.StartupID) error

	Negotiate(ctx context.Context, bidId string, startupId entity.StartupID, message string) (*entity.BidOutputModel, error)
	NegotiateAsInvestor(ctx context.Context, bidId string, investorId entity.InvestorID, message string) (*entity.BidOutputModel, error)

	GetBid(ctx context.Context, bidId string) (*entity.BidOutputModel, error)
}

// Query is the read side. It never mutates.
type Query interface {
	ListForStartup(ctx context.Context, startupId entity.StartupID, pg *entity.PaginationInput) ([]entity.BidOutputModel, error)
	ListForInvestor(ctx context.Context, investorId entity.InvestorID, pg *entity.PaginationInput) ([]entity.EnrichedBidOutputModel, error)
	ListRejectedForInvestor(ctx context.Context, investorId entity.InvestorID, pg *entity.PaginationInput) ([]entity.EnrichedBidOutputModel, error)
	ListBids(ctx context.Context, filter entity.BidFilter, pg *entity.PaginationInput) ([]entity.BidOutputModel, error)
	GetInvestorFunding(ctx context.Context, investorId entity.InvestorID) ([]entity.FundingOutputModel, error)
}

type Services struct {
	Diagnostics Diagnostics
	Bid         Bid
	Query       Query
}

type Dependencies struct {
	Repos   *repo.Repositories
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *Metrics
}

func (d *Dependencies) defaults() {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics(prometheus.NewRegistry())
	}
}

func NewServices(deps Dependencies) *Services {
	deps.defaults()

	return &Services{
		Bid:         NewBidService(deps),
		Query:       NewQueryService(deps),
		Diagnostics: NewDiagnosticsService(deps.Repos),
	}
}
