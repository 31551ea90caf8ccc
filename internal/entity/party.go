package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business keys. They are minted when an account is created and are the
// only identifiers outside callers know; the storage id never leaves the
// repository layer for startups and investors.
type (
	StartupID  string
	InvestorID string
)

// Display name used when a startup cannot be resolved by its business key.
const UnknownStartupName = "Unknown Startup"

type Startup struct {
	Id        uuid.UUID `db:"id"`
	StartupId StartupID `db:"startup_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Investor struct {
	Id         uuid.UUID  `db:"id"`
	InvestorId InvestorID `db:"investor_id"`
	Name       string     `db:"name"`
	CreatedAt  time.Time  `db:"created_at"`
}

type CreateStartupInput struct {
	StartupId StartupID `validate:"required,max=100"`
	Name      string    `validate:"required,min=2,max=200"`
}

type CreateInvestorInput struct {
	InvestorId InvestorID `validate:"required,max=100"`
	Name       string     `validate:"required,min=2,max=200"`
}

// One entry of an investor's funding history, written when a bid is accepted.
type FundingRecord struct {
	Id          uuid.UUID       `db:"id"`
	InvestorId  InvestorID      `db:"investor_id"`
	BidId       uuid.UUID       `db:"bid_id"`
	CompanyName string          `db:"company_name"`
	Amount      decimal.Decimal `db:"amount_cents"`
	Year        int             `db:"year"`
	CreatedAt   time.Time       `db:"created_at"`
}

type FundingOutputModel struct {
	CompanyName string          `json:"companyName"`
	Amount      decimal.Decimal `json:"amount"`
	Year        int             `json:"year"`
}
