package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"startup-funding-api/internal/clock"
	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo"
	"startup-funding-api/internal/repo/repo_errors"
	"startup-funding-api/internal/validation"
	"startup-funding-api/pkg/database"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const maxNegotiationMessage = 2000

type BidService struct {
	bidRepo    repo.Bid
	partyRepo  repo.Party
	transactor repo.Transactor
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *Metrics
}

func NewBidService(deps Dependencies) *BidService {
	deps.defaults()

	return &BidService{
		bidRepo:    deps.Repos.Bid,
		partyRepo:  deps.Repos.Party,
		transactor: deps.Repos.Transactor,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

func (s *BidService) SubmitOffer(ctx context.Context, input *entity.NewBidInput) (*entity.BidOutputModel, error) {
	bid, err := s.bidRepo.CreateBid(ctx, input)
	if err != nil {
		return nil, err
	}

	s.metrics.transition(transitionSubmitted, 1)
	s.logger.InfoContext(ctx, "bid submitted",
		"bid_id", bid.Id, "startup_id", bid.StartupId, "investor_id", bid.InvestorId)

	return mapBid(bid), nil
}

func (s *BidService) GetBid(ctx context.Context, bidId string) (*entity.BidOutputModel, error) {
	id, err := parseBidId(bidId)
	if err != nil {
		return nil, err
	}

	bid, err := s.bidRepo.GetBidById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	return mapBid(bid), nil
}

// AcceptOffer accepts the bid on behalf of its startup, supersedes every
// other pending bid of that startup and records the funding on the
// investor. All three writes commit together or not at all.
//
// Accepting an accepted bid is a no-op. When two bids of one startup are
// accepted concurrently the first commit wins and the other request gets
// ErrBidConflict.
func (s *BidService) AcceptOffer(ctx context.Context, bidId string, startupId entity.StartupID) (*entity.AcceptOutputModel, error) {
	timer := prometheus.NewTimer(s.metrics.AcceptDuration)
	defer timer.ObserveDuration()

	bid, err := s.loadStartupBid(ctx, bidId, startupId)
	if err != nil {
		return nil, err
	}

	switch bid.Status {
	case entity.BidAccepted:
		return acceptConfirmation(bid.Id, true, 0), nil
	case entity.BidRejected:
		s.metrics.AcceptConflicts.Inc()
		return nil, ErrBidConflict
	}

	var (
		alreadyAccepted bool
		superseded      int64
	)
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		alreadyAccepted, superseded = false, 0

		moved, err := s.bidRepo.UpdateBidStatusById(ctx, bid.Id, entity.BidPending, entity.BidAccepted)
		if err != nil {
			return err
		}
		if !moved {
			current, err := s.bidRepo.GetBidById(ctx, bid.Id)
			if err != nil {
				if errors.Is(err, repo_errors.ErrNotFound) {
					return ErrBidNotFound
				}

				return err
			}
			if current.Status == entity.BidAccepted {
				alreadyAccepted = true
				return nil
			}

			return ErrBidConflict
		}

		superseded, err = s.bidRepo.RejectPendingStartupBids(ctx, bid.StartupId, bid.Id)
		if err != nil {
			return err
		}

		companyName, err := s.startupName(ctx, bid.StartupId)
		if err != nil {
			return err
		}

		return s.partyRepo.AppendFunding(ctx, &entity.FundingRecord{
			InvestorId:  bid.InvestorId,
			BidId:       bid.Id,
			CompanyName: companyName,
			Amount:      bid.Amount,
			Year:        s.clock.Now().Year(),
		})
	})
	if err != nil {
		if errors.Is(err, ErrBidNotFound) {
			return nil, err
		}
		if errors.Is(err, ErrBidConflict) || database.IsConflict(err) || errors.Is(err, context.DeadlineExceeded) {
			s.metrics.AcceptConflicts.Inc()
			s.logger.WarnContext(ctx, "bid accept aborted", "bid_id", bid.Id, "startup_id", bid.StartupId, "error", err)
			return nil, ErrBidConflict
		}

		return nil, fmt.Errorf("accept bid %s: %w", bid.Id, err)
	}

	if alreadyAccepted {
		return acceptConfirmation(bid.Id, true, 0), nil
	}

	s.metrics.transition(transitionAccepted, 1)
	s.metrics.transition(transitionSuperseded, int(superseded))
	s.logger.InfoContext(ctx, "bid accepted",
		"bid_id", bid.Id, "startup_id", bid.StartupId, "investor_id", bid.InvestorId, "superseded", superseded)

	return acceptConfirmation(bid.Id, false, superseded), nil
}

// RejectOffer is the owner declining a pending offer. The record is deleted,
// unlike the siblings superseded by AcceptOffer which keep status rejected.
func (s *BidService) RejectOffer(ctx context.Context, bidId string, startupId entity.StartupID) error {
	var declined uuid.UUID
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		bid, err := s.lockBid(ctx, bidId)
		if err != nil {
			return err
		}
		if bid.StartupId != startupId {
			return ErrUserHasNoAccessToBid
		}
		if bid.Status != entity.BidPending {
			return ErrBidNotPending
		}

		if err := s.bidRepo.DeleteBidById(ctx, bid.Id); err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return ErrBidNotFound
			}

			return err
		}
		declined = bid.Id

		return nil
	})
	if err != nil {
		if database.IsConflict(err) {
			return ErrBidConflict
		}

		return err
	}

	s.metrics.transition(transitionDeclined, 1)
	s.logger.InfoContext(ctx, "bid declined", "bid_id", declined, "startup_id", startupId)

	return nil
}

func (s *BidService) Negotiate(ctx context.Context, bidId string, startupId entity.StartupID, message string) (*entity.BidOutputModel, error) {
	return s.negotiate(ctx, bidId, entity.SentByStartup, message, func(bid *entity.Bid) error {
		if bid.StartupId != startupId {
			return ErrUserHasNoAccessToBid
		}

		return nil
	})
}

func (s *BidService) NegotiateAsInvestor(ctx context.Context, bidId string, investorId entity.InvestorID, message string) (*entity.BidOutputModel, error) {
	return s.negotiate(ctx, bidId, entity.SentByInvestor, message, func(bid *entity.Bid) error {
		if bid.InvestorId != investorId {
			return ErrInvestorHasNoAccessToBid
		}

		return nil
	})
}

func (s *BidService) negotiate(ctx context.Context, bidId string, sender entity.NegotiationSender, message string, authorize func(*entity.Bid) error) (*entity.BidOutputModel, error) {
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	var updated *entity.Bid
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		bid, err := s.lockBid(ctx, bidId)
		if err != nil {
			return err
		}
		if err := authorize(bid); err != nil {
			return err
		}
		if bid.Status.Terminal() {
			return ErrBidNotPending
		}

		updated, err = s.bidRepo.AppendNegotiation(ctx, bid.Id, &entity.Negotiation{Message: message, SentBy: sender})
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrBidNotFound
		}

		return err
	})
	if err != nil {
		if database.IsConflict(err) {
			return nil, ErrBidConflict
		}

		return nil, err
	}

	s.metrics.transition(transitionNegotiated, 1)
	s.logger.DebugContext(ctx, "negotiation appended", "bid_id", updated.Id, "sent_by", sender)

	return mapBid(updated), nil
}

func (s *BidService) loadStartupBid(ctx context.Context, bidId string, startupId entity.StartupID) (*entity.Bid, error) {
	id, err := parseBidId(bidId)
	if err != nil {
		return nil, err
	}

	bid, err := s.bidRepo.GetBidById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	if bid.StartupId != startupId {
		return nil, ErrUserHasNoAccessToBid
	}

	return bid, nil
}

func (s *BidService) lockBid(ctx context.Context, bidId string) (*entity.Bid, error) {
	id, err := parseBidId(bidId)
	if err != nil {
		return nil, err
	}

	bid, err := s.bidRepo.LockBidById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	return bid, nil
}

// startupName resolves the display name recorded in the funding history.
// A startup that cannot be found gets the placeholder name.
func (s *BidService) startupName(ctx context.Context, startupId entity.StartupID) (string, error) {
	startup, err := s.partyRepo.GetStartupByKey(ctx, startupId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			s.logger.WarnContext(ctx, "startup not found, using placeholder name", "startup_id", startupId)
			return entity.UnknownStartupName, nil
		}

		return "", err
	}

	return startup.Name, nil
}

// A malformed id cannot name a stored bid.
func parseBidId(bidId string) (uuid.UUID, error) {
	id, err := uuid.Parse(bidId)
	if err != nil {
		return uuid.Nil, ErrBidNotFound
	}

	return id, nil
}

func validateMessage(message string) error {
	switch {
	case strings.TrimSpace(message) == "":
		return &validation.ValidationError{Fields: []validation.FieldViolation{{Field: "message", Reason: "this field is required"}}}
	case len(message) > maxNegotiationMessage:
		return &validation.ValidationError{Fields: []validation.FieldViolation{{Field: "message", Reason: fmt.Sprintf("length should be less or equal than %d", maxNegotiationMessage)}}}
	}

	return nil
}

func acceptConfirmation(id uuid.UUID, alreadyAccepted bool, superseded int64) *entity.AcceptOutputModel {
	return &entity.AcceptOutputModel{
		BidId:           id.String(),
		Status:          string(entity.BidAccepted),
		AlreadyAccepted: alreadyAccepted,
		Superseded:      superseded,
	}
}
