// Package server exposes the local gateways over the same HTTP contract the
// remote service speaks, so another vocabhub instance can use it as its
// remote backend.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	membershipdto "vocabhub/internal/modules/membership/dto"
	membershipout "vocabhub/internal/modules/membership/port/out"
	sessiondto "vocabhub/internal/modules/session/dto"
	sessionout "vocabhub/internal/modules/session/port/out"
	"vocabhub/internal/platform/httpx"
	"vocabhub/internal/platform/logging"
)

type Gateways struct {
	Study      sessionout.StudyGateway
	Assessment sessionout.AssessmentGateway
	Saved      membershipout.Gateway
}

type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

// New builds the server. Every /v1 route requires "Authorization: Bearer
// <token>".
func New(addr, token string, gws Gateways, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger).With(zap.String("component", "server"))
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")
	v1.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, _ echo.Context) (bool, error) {
			return token != "" && subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(error, echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing bearer token")
		},
	}))

	h := handler{logger: logger}
	registerSessions(v1, sessiondto.StudySessionsPath, gws.Study, h)
	registerSessions(v1, sessiondto.AssessmentSessionsPath, gws.Assessment, h)
	if gws.Saved != nil {
		saved := savedHandler{gateway: gws.Saved, handler: h}
		v1.GET(trimV1(membershipdto.SavedPath), saved.list)
		v1.POST(trimV1(membershipdto.SavedPath), saved.add)
		v1.DELETE(trimV1(membershipdto.SavedPath)+"/:item_id", saved.remove)
	}

	return &Server{echo: e, addr: addr, logger: logger}
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.addr))
		errc <- s.echo.Start(s.addr)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// errorHandler normalises every failure to {"error": "..."}.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			logger.Warn("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, httpx.ErrorBody{Error: msg})
	}
}

func trimV1(path string) string {
	return path[len("/v1"):]
}
