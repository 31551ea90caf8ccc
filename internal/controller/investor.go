package controller

import (
	"net/http"

	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/service"

	"github.com/labstack/echo"
)

type investorRoutesHandler struct {
	queryService service.Query
}

func newInvestorRoutesHandler(outer *echo.Group, services *service.Services) *investorRoutesHandler {
	h := &investorRoutesHandler{queryService: services.Query}
	outer.GET("/investors/:investorId/funding", h.GetFunding)

	return h
}

// /investors/:investorId/funding
func (h *investorRoutesHandler) GetFunding(c echo.Context) error {
	history, err := h.queryService.GetInvestorFunding(c.Request().Context(), entity.InvestorID(c.Param("investorId")))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, history)
}
