package service

import (
	"time"

	"startup-funding-api/internal/entity"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapBid(b *entity.Bid) *entity.BidOutputModel {
	conditions := make([]string, len(b.Conditions))
	copy(conditions, b.Conditions)

	negotiations := make([]entity.NegotiationOutputModel, 0, len(b.Negotiations))
	for _, n := range b.Negotiations {
		negotiations = append(negotiations, entity.NegotiationOutputModel{
			Message:   n.Message,
			SentBy:    string(n.SentBy),
			CreatedAt: formatTime(n.CreatedAt),
		})
	}

	return &entity.BidOutputModel{
		Id:           b.Id.String(),
		StartupId:    string(b.StartupId),
		InvestorId:   string(b.InvestorId),
		Amount:       b.Amount,
		Equity:       b.Equity,
		Royalty:      b.Royalty,
		Conditions:   conditions,
		Status:       string(b.Status),
		Negotiations: negotiations,
		CreatedAt:    formatTime(b.CreatedAt),
		UpdatedAt:    formatTime(b.UpdatedAt),
	}
}

func mapBids(b []entity.Bid) []entity.BidOutputModel {
	s := make([]entity.BidOutputModel, 0)
	for _, bid := range b {
		s = append(s, *mapBid(&bid))
	}

	return s
}

func mapFunding(records []entity.FundingRecord) []entity.FundingOutputModel {
	s := make([]entity.FundingOutputModel, 0)
	for _, r := range records {
		s = append(s, entity.FundingOutputModel{
			CompanyName: r.CompanyName,
			Amount:      r.Amount,
			Year:        r.Year,
		})
	}

	return s
}
