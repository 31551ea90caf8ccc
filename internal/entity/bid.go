package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

// Terminal statuses never change again.
func (s BidStatus) Terminal() bool {
	return s == BidAccepted || s == BidRejected
}

type NegotiationSender string

const (
	SentByStartup  NegotiationSender = "startup"
	SentByInvestor NegotiationSender = "investor"
)

// db model
type Bid struct {
	Id           uuid.UUID       `db:"id"`
	StartupId    StartupID       `db:"startup_id"`
	InvestorId   InvestorID      `db:"investor_id"`
	Amount       decimal.Decimal `db:"amount_cents"`
	Equity       float64         `db:"equity"`
	Royalty      float64         `db:"royalty"`
	Conditions   []string
	Status       BidStatus `db:"status"`
	Negotiations []Negotiation
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Negotiation struct {
	Id        uuid.UUID         `db:"id"`
	Message   string            `db:"message"`
	SentBy    NegotiationSender `db:"sent_by"`
	CreatedAt time.Time         `db:"created_at"`
}

// service + repo input model
type NewBidInput struct {
	StartupId  StartupID       `json:"startupId" validate:"required,max=100"`
	InvestorId InvestorID      `json:"investorId" validate:"required,max=100"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Equity     float64         `json:"equity" validate:"gte=0,lte=100"`
	Royalty    float64         `json:"royalty" validate:"gte=0,lte=100"`
	Conditions []string        `json:"conditions" validate:"max=50,dive,max=1000"`
	Status     BidStatus       // ignored: a new bid is always pending
	// Id, CreatedAt and UpdatedAt are set by the repository
}

type BidFilter struct {
	StartupId  StartupID
	InvestorId InvestorID
}

// controller model
type NegotiationOutputModel struct {
	Message   string `json:"message"`
	SentBy    string `json:"sentBy"`
	CreatedAt string `json:"createdAt"`
}

type BidOutputModel struct {
	Id           string                   `json:"id"`
	StartupId    string                   `json:"startupId"`
	InvestorId   string                   `json:"investorId"`
	Amount       decimal.Decimal          `json:"amount"`
	Equity       float64                  `json:"equity"`
	Royalty      float64                  `json:"royalty"`
	Conditions   []string                 `json:"conditions"`
	Status       string                   `json:"status"`
	Negotiations []NegotiationOutputModel `json:"negotiations"`
	CreatedAt    string                   `json:"createdAt"`
	UpdatedAt    string                   `json:"updatedAt"`
}

// BidOutputModel joined with the counterpart startup's display name.
type EnrichedBidOutputModel struct {
	BidOutputModel
	StartupName string `json:"startupName"`
}

type AcceptOutputModel struct {
	BidId           string `json:"bidId"`
	Status          string `json:"status"`
	AlreadyAccepted bool   `json:"alreadyAccepted"`
	Superseded      int64  `json:"superseded"`
}
