package service

import "errors"

var (
	ErrBidNotFound              = errors.New("bid not found")
	ErrUserHasNoAccessToBid     = errors.New("startup doesn't have sufficient rights to access the bid")
	ErrInvestorHasNoAccessToBid = errors.New("investor doesn't have sufficient rights to access the bid")

	// ErrBidConflict is retryable: the bid changed under the request, or the
	// store aborted the transaction.
	ErrBidConflict   = errors.New("bid was changed by a concurrent request")
	ErrBidNotPending = errors.New("bid is no longer pending")
)
