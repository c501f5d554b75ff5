package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	membershipdto "vocabhub/internal/modules/membership/dto"
	membershipout "vocabhub/internal/modules/membership/port/out"
)

type savedHandler struct {
	handler
	gateway membershipout.Gateway
}

func (h savedHandler) list(c echo.Context) error {
	ids, err := h.gateway.List(c.Request().Context(), bearer(c))
	if err != nil {
		return h.internal("list saved words", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, membershipdto.ListReply{ItemIDs: ids})
}

func (h savedHandler) add(c echo.Context) error {
	var req membershipdto.AddRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ItemID == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "item_id is required")
	}
	if err := h.gateway.Add(c.Request().Context(), bearer(c), req.ItemID); err != nil {
		return h.internal("save word", err)
	}
	return c.JSON(http.StatusOK, membershipdto.AcceptReply{Accepted: true})
}

func (h savedHandler) remove(c echo.Context) error {
	if err := h.gateway.Remove(c.Request().Context(), bearer(c), c.Param("item_id")); err != nil {
		return h.internal("remove saved word", err)
	}
	return c.JSON(http.StatusOK, membershipdto.AcceptReply{Accepted: true})
}
