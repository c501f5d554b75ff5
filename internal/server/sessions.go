package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vocabhub/internal/modules/session/domain"
	sessiondto "vocabhub/internal/modules/session/dto"
	sessionout "vocabhub/internal/modules/session/port/out"
	apperrors "vocabhub/internal/platform/errors"
)

type handler struct {
	logger *zap.Logger
}

type sessionHandler[T, R any] struct {
	handler
	gateway sessionout.Gateway[T, R]
}

func registerSessions[T, R any](g *echo.Group, path string, gw sessionout.Gateway[T, R], h handler) {
	if gw == nil {
		return
	}
	sh := sessionHandler[T, R]{handler: h, gateway: gw}
	base := trimV1(path)
	g.POST(base, sh.load)
	g.POST(base+"/:session_id/responses", sh.submit)
	g.DELETE(base+"/:session_id", sh.abandon)
}

func bearer(c echo.Context) string {
	return strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer"))
}

func (h sessionHandler[T, R]) load(c echo.Context) error {
	var params domain.LoadParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.gateway.Load(c.Request().Context(), bearer(c), params)
	if err != nil {
		return h.internal("load session", err)
	}
	items := res.Entries
	if items == nil {
		items = []domain.Entry[T]{}
	}
	return c.JSON(http.StatusOK, sessiondto.LoadReply[T]{SessionID: res.SessionID, Items: items, Metadata: res.Metadata})
}

func (h sessionHandler[T, R]) submit(c echo.Context) error {
	var req sessiondto.SubmitRequest[R]
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ItemID == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "item_id is required")
	}
	res, err := h.gateway.Submit(c.Request().Context(), bearer(c), c.Param("session_id"), req.ItemID, req.Response)
	if err != nil {
		return h.internal("submit response", err)
	}
	return c.JSON(http.StatusOK, sessiondto.SubmitReply{Accepted: res.Accepted, Aggregate: res.Aggregate})
}

func (h sessionHandler[T, R]) abandon(c echo.Context) error {
	ok, err := h.gateway.Abandon(c.Request().Context(), bearer(c), c.Param("session_id"))
	if err != nil {
		return h.internal("abandon session", err)
	}
	return c.JSON(http.StatusOK, sessiondto.AcceptReply{Accepted: ok})
}

func (h handler) internal(what string, err error) error {
	if errors.Is(err, apperrors.ErrInvalidInput) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	h.logger.Error(what+" failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "failed to "+what)
}
