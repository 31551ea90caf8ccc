package controller

import (
	"net/http"

	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/service"
	"startup-funding-api/internal/validation"

	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type bidRoutesHandler struct {
	bidService   service.Bid
	queryService service.Query
	validate     *validation.Validator
}

func newBidRoutesHandler(outer *echo.Group, services *service.Services, v *validation.Validator) *bidRoutesHandler {
	h := &bidRoutesHandler{bidService: services.Bid, queryService: services.Query, validate: v}
	outer.POST("/bids", h.SubmitOffer)
	outer.GET("/bids", h.ListBids)

	outer.GET("/bids/startup/:startupId", h.ListForStartup)
	outer.GET("/bids/investor/:investorId", h.ListForInvestor)
	outer.GET("/bids/investor/:investorId/rejected", h.ListRejectedForInvestor)

	outer.GET("/bids/:bidId", h.GetBid)
	outer.POST("/bids/:bidId/accept", h.AcceptOffer)
	outer.POST("/bids/:bidId/reject", h.RejectOffer)
	outer.POST("/bids/:bidId/negotiate", h.Negotiate)
	outer.POST("/bids/:bidId/negotiate/investor", h.NegotiateAsInvestor)

	return h
}

// Equity and royalty are pointers so that a missing term is told apart
// from an explicit zero.
type submitOfferInput struct {
	StartupId  string          `json:"startupId" validate:"required,max=100"`
	InvestorId string          `json:"investorId" validate:"required,max=100"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Equity     *float64        `json:"equity" validate:"required,gte=0,lte=100"`
	Royalty    *float64        `json:"royalty" validate:"required,gte=0,lte=100"`
	Conditions []string        `json:"conditions" validate:"max=50,dive,max=1000"`
}

// /bids
func (h *bidRoutesHandler) SubmitOffer(c echo.Context) error {
	var input submitOfferInput
	if err := c.Bind(&input); err != nil {
		return badInput(c)
	}

	if err := h.validate.Struct(input); err != nil {
		return respondError(c, err)
	}

	model := &entity.NewBidInput{
		StartupId:  entity.StartupID(input.StartupId),
		InvestorId: entity.InvestorID(input.InvestorId),
		Amount:     input.Amount,
		Equity:     *input.Equity,
		Royalty:    *input.Royalty,
		Conditions: input.Conditions,
	}

	bid, err := h.bidService.SubmitOffer(c.Request().Context(), model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, bid)
}

type listBidsInput struct {
	StartupId  string `query:"startupId" validate:"max=100"`
	InvestorId string `query:"investorId" validate:"max=100"`
}

// /bids?startupId=&investorId=
func (h *bidRoutesHandler) ListBids(c echo.Context) error {
	pg, err := bindPagination(c, h.validate)
	if err != nil {
		return respondError(c, err)
	}

	var input listBidsInput
	if err := c.Bind(&input); err != nil {
		return badInput(c)
	}
	if err := h.validate.Struct(input); err != nil {
		return respondError(c, err)
	}

	filter := entity.BidFilter{
		StartupId:  entity.StartupID(input.StartupId),
		InvestorId: entity.InvestorID(input.InvestorId),
	}

	bids, err := h.queryService.ListBids(c.Request().Context(), filter, pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bids)
}

// /bids/:bidId
func (h *bidRoutesHandler) GetBid(c echo.Context) error {
	bid, err := h.bidService.GetBid(c.Request().Context(), c.Param("bidId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bid)
}

type startupDecisionInput struct {
	StartupId string `json:"startupId" validate:"required,max=100"`
}

// /bids/:bidId/accept
func (h *bidRoutesHandler) AcceptOffer(c echo.Context) error {
	var input startupDecisionInput
	if err := c.Bind(&input); err != nil {
		return badInput(c)
	}
	if err := h.validate.Struct(input); err != nil {
		return respondError(c, err)
	}

	confirmation, err := h.bidService.AcceptOffer(c.Request().Context(), c.Param("bidId"), entity.StartupID(input.StartupId))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, confirmation)
}

type rejectOutput struct {
	BidId   string `json:"bidId"`
	Deleted bool   `json:"deleted"`
}

// /bids/:bidId/reject
func (h *bidRoutesHandler) RejectOffer(c echo.Context) error {
	var input startupDecisionInput
	if err := c.Bind(&input); err != nil {
		return badInput(c)
	}
	if err := h.validate.Struct(input); err != nil {
		return respondError(c, err)
	}

	bidId := c.Param("bidId")
	if err := h.bidService.RejectOffer(c.Request().Context(), bidId, entity.StartupID(input.StartupId)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, rejectOutput{BidId: bidId, Deleted: true})
}

type startupMessageInput struct {
	StartupId string `json:"startupId" validate:"required,max=100"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// /bids/:bidId/negotiate
func (h *bidRoutesHandler) Negotiate(c echo.Context) error {
	var input startupMessageInput
	if err := c.Bind(&input); err != nil {
		return badInput(c)
	}
	if err := h.validate.Struct(input); err != nil {
		return respondError(c, err)
	}

	bid, err := h.bidService.Negotiate(c.Request().Context(), c.Param("bidId"), entity.StartupID(input.StartupId), input.Message)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bid)
}

type investorMessageInput struct {
	InvestorId string `json:"investorId" validate:"required,max=100"`
	Message    string `json:"message" validate:"required,max=2000"`
}

// /bids/:bidId/negotiate/investor
func (h *bidRoutesHandler) NegotiateAsInvestor(c echo.Context) error {
	var input investorMessageInput
	if err := c.Bind(&input); err != nil {
		return badInput(c)
	}
	if err := h.validate.Struct(input); err != nil {
		return respondError(c, err)
	}

	bid, err := h.bidService.NegotiateAsInvestor(c.Request().Context(), c.Param("bidId"), entity.InvestorID(input.InvestorId), input.Message)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bid)
}

// /bids/startup/:startupId
func (h *bidRoutesHandler) ListForStartup(c echo.Context) error {
	pg, err := bindPagination(c, h.validate)
	if err != nil {
		return respondError(c, err)
	}

	bids, err := h.queryService.ListForStartup(c.Request().Context(), entity.StartupID(c.Param("startupId")), pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bids)
}

// /bids/investor/:investorId
func (h *bidRoutesHandler) ListForInvestor(c echo.Context) error {
	pg, err := bindPagination(c, h.validate)
	if err != nil {
		return respondError(c, err)
	}

	bids, err := h.queryService.ListForInvestor(c.Request().Context(), entity.InvestorID(c.Param("investorId")), pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bids)
}

// /bids/investor/:investorId/rejected
func (h *bidRoutesHandler) ListRejectedForInvestor(c echo.Context) error {
	pg, err := bindPagination(c, h.validate)
	if err != nil {
		return respondError(c, err)
	}

	bids, err := h.queryService.ListRejectedForInvestor(c.Request().Context(), entity.InvestorID(c.Param("investorId")), pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bids)
}
