package service

import (
	"context"
	"log/slog"

	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo"
)

type QueryService struct {
	bidRepo   repo.Bid
	partyRepo repo.Party
	logger    *slog.Logger
	metrics   *Metrics
}

func NewQueryService(deps Dependencies) *QueryService {
	deps.defaults()

	return &QueryService{
		bidRepo:   deps.Repos.Bid,
		partyRepo: deps.Repos.Party,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}

func (s *QueryService) ListForStartup(ctx context.Context, startupId entity.StartupID, pg *entity.PaginationInput) ([]entity.BidOutputModel, error) {
	bids, err := s.bidRepo.GetStartupBids(ctx, startupId, pg)
	if err != nil {
		return nil, err
	}

	return mapBids(bids), nil
}

func (s *QueryService) ListForInvestor(ctx context.Context, investorId entity.InvestorID, pg *entity.PaginationInput) ([]entity.EnrichedBidOutputModel, error) {
	bids, err := s.bidRepo.GetInvestorBids(ctx, investorId, pg)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, bids), nil
}

// ListRejectedForInvestor returns the investor's bids that lost to a sibling.
// Offers declined by their startup are deleted and never show up here.
func (s *QueryService) ListRejectedForInvestor(ctx context.Context, investorId entity.InvestorID, pg *entity.PaginationInput) ([]entity.EnrichedBidOutputModel, error) {
	bids, err := s.bidRepo.GetInvestorBidsByStatus(ctx, investorId, entity.BidRejected, pg)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, bids), nil
}

func (s *QueryService) ListBids(ctx context.Context, filter entity.BidFilter, pg *entity.PaginationInput) ([]entity.BidOutputModel, error) {
	bids, err := s.bidRepo.ListBids(ctx, filter, pg)
	if err != nil {
		return nil, err
	}

	return mapBids(bids), nil
}

func (s *QueryService) GetInvestorFunding(ctx context.Context, investorId entity.InvestorID) ([]entity.FundingOutputModel, error) {
	records, err := s.partyRepo.GetInvestorFunding(ctx, investorId)
	if err != nil {
		return nil, err
	}

	return mapFunding(records), nil
}

// enrich joins every bid with its startup's display name. Lookup failures
// never fail the list: the batch falls back to per-startup lookups and each
// unresolved bid gets the placeholder name.
func (s *QueryService) enrich(ctx context.Context, bids []entity.Bid) []entity.EnrichedBidOutputModel {
	keys := make([]entity.StartupID, 0, len(bids))
	for _, bid := range bids {
		keys = append(keys, bid.StartupId)
	}

	names, err := s.partyRepo.GetStartupNames(ctx, keys)
	if err != nil {
		s.logger.WarnContext(ctx, "batch startup name lookup failed, resolving one by one", "error", err)
		names = s.resolveEach(ctx, keys)
	}

	out := make([]entity.EnrichedBidOutputModel, 0, len(bids))
	for _, bid := range bids {
		name, ok := names[bid.StartupId]
		if !ok {
			name = entity.UnknownStartupName
			s.metrics.EnrichmentFallbacks.Inc()
			s.logger.DebugContext(ctx, "startup name unresolved", "bid_id", bid.Id, "startup_id", bid.StartupId)
		}

		out = append(out, entity.EnrichedBidOutputModel{
			BidOutputModel: *mapBid(&bid),
			StartupName:    name,
		})
	}

	return out
}

func (s *QueryService) resolveEach(ctx context.Context, keys []entity.StartupID) map[entity.StartupID]string {
	names := make(map[entity.StartupID]string, len(keys))
	tried := make(map[entity.StartupID]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := tried[key]; ok {
			continue
		}
		tried[key] = struct{}{}

		startup, err := s.partyRepo.GetStartupByKey(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "startup name lookup failed", "startup_id", key, "error", err)
			continue
		}
		names[key] = startup.Name
	}

	return names
}
