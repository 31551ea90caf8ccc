package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/service"
	"startup-funding-api/internal/validation"

	"github.com/labstack/echo"
)

const (
	defaultLimit  = 0
	defaultOffset = 0
)

type errorResponse struct {
	Reason string                      `json:"reason"`
	Fields []validation.FieldViolation `json:"fields,omitempty"`
}

type paginationInput struct {
	Limit  int `query:"limit" validate:"gte=0,lte=1000"`
	Offset int `query:"offset" validate:"gte=0"`
}

func newPaginationInput() paginationInput {
	return paginationInput{Limit: defaultLimit, Offset: defaultOffset}
}

func (p paginationInput) toEntity() *entity.PaginationInput {
	return entity.NewPaginationInput(p.Limit, p.Offset)
}

// bindPagination reads limit and offset from the query string.
func bindPagination(c echo.Context, v *validation.Validator) (*entity.PaginationInput, error) {
	input := newPaginationInput()
	if err := c.Bind(&input); err != nil {
		return nil, &validation.ValidationError{Fields: []validation.FieldViolation{{Field: "limit", Reason: "incorrect value passed"}}}
	}
	if err := v.Struct(input); err != nil {
		return nil, err
	}

	return input.toEntity(), nil
}

// respondError writes the response for err. Only failures the client cannot
// fix are handed back to echo.
func respondError(c echo.Context, err error) error {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errorResponse{Reason: "Not enough values passed or incorrect input value passed", Fields: verr.Fields})
	case errors.Is(err, service.ErrBidNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Reason: "There is no bid with given id"})
	case errors.Is(err, service.ErrUserHasNoAccessToBid):
		return c.JSON(http.StatusForbidden, errorResponse{Reason: "The bid was made to another startup"})
	case errors.Is(err, service.ErrInvestorHasNoAccessToBid):
		return c.JSON(http.StatusForbidden, errorResponse{Reason: "The bid was made by another investor"})
	case errors.Is(err, service.ErrBidConflict):
		return c.JSON(http.StatusConflict, errorResponse{Reason: "The bid was changed concurrently, retry the request"})
	case errors.Is(err, service.ErrBidNotPending):
		return c.JSON(http.StatusConflict, errorResponse{Reason: "The bid is no longer pending"})
	}

	if e := c.JSON(http.StatusInternalServerError, errorResponse{Reason: "Internal error"}); e != nil {
		return e
	}

	return err
}

func badInput(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Reason: "Input data is not formed correctly"})
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			level := slog.LevelInfo
			if err != nil || c.Response().Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []any{
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency", time.Since(start),
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Log(c.Request().Context(), level, "request", attrs...)

			return err
		}
	}
}

// errorHandler replaces echo's default handler so unhandled errors and
// router misses share the JSON error body.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		reason := "Internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			reason = http.StatusText(code)
		} else {
			logger.Error("unhandled error", "path", c.Path(), "error", err)
		}

		if e := c.JSON(code, errorResponse{Reason: reason}); e != nil {
			logger.Error("write error response", "error", e)
		}
	}
}
