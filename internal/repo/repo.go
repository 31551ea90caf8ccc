package repo

import (
	"context"

	"startup-funding-api/internal/clock"
	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo/pgdb"
	"startup-funding-api/internal/validation"
	"startup-funding-api/pkg/database"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

// Transactor runs fn in one store transaction. Repository calls made with
// the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Party resolves startups and investors by business key and keeps the
// investors' funding history.
type Party interface {
	CreateStartup(ctx context.Context, input *entity.CreateStartupInput) (*entity.Startup, error)
	CreateInvestor(ctx context.Context, input *entity.CreateInvestorInput) (*entity.Investor, error)
	GetStartupByKey(ctx context.Context, startupId entity.StartupID) (*entity.Startup, error)
	GetInvestorByKey(ctx context.Context, investorId entity.InvestorID) (*entity.Investor, error)
	GetStartupNames(ctx context.Context, startupIds []entity.StartupID) (map[entity.StartupID]string, error)
	AppendFunding(ctx context.Context, record *entity.FundingRecord) error
	GetInvestorFunding(ctx context.Context, investorId entity.InvestorID) ([]entity.FundingRecord, error)
}

// Bid is typed CRUD over bid records. It holds no lifecycle rules.
type Bid interface {
	CreateBid(ctx context.Context, input *entity.NewBidInput) (*entity.Bid, error)
	GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	LockBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	GetStartupBids(ctx context.Context, startupId entity.StartupID, pg *entity.PaginationInput) ([]entity.Bid, error)
	GetInvestorBids(ctx context.Context, investorId entity.InvestorID, pg *entity.PaginationInput) ([]entity.Bid, error)
	GetInvestorBidsByStatus(ctx context.Context, investorId entity.InvestorID, status entity.BidStatus, pg *entity.PaginationInput) ([]entity.Bid, error)
	ListBids(ctx context.Context, filter entity.BidFilter, pg *entity.PaginationInput) ([]entity.Bid, error)
	UpdateBidStatusById(ctx context.Context, id uuid.UUID, from entity.BidStatus, to entity.BidStatus) (bool, error)
	RejectPendingStartupBids(ctx context.Context, startupId entity.StartupID, exceptId uuid.UUID) (int64, error)
	AppendNegotiation(ctx context.Context, id uuid.UUID, entry *entity.Negotiation) (*entity.Bid, error)
	DeleteBidById(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	Diagnostics
	Transactor
	Party
	Bid
}

func NewRepositories(store *database.Store, clk clock.Clock, v *validation.Validator) *Repositories {
	return &Repositories{
		Diagnostics: pgdb.NewDiagnosticsRepo(store),
		Transactor:  store,
		Party:       pgdb.NewPartyRepo(store, clk, v),
		Bid:         pgdb.NewBidRepo(store, clk, v),
	}
}
