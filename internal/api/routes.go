package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/internal/auth"
	"github.com/ketoprak/askandsign/usecase"
)

// InitQueryRoutes registers the query service endpoints. When signer is
// non-nil, POST /query requires a bearer token.
func InitQueryRoutes(e *echo.Echo, svc *usecase.QueryService, signer *auth.Signer, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "query-service",
		})
	})

	h := &queryHandler{service: svc, logger: logger}
	if signer != nil {
		e.POST("/query", h.query, RequireToken(signer, logger))
		return
	}
	e.POST("/query", h.query)
}

type queryHandler struct {
	service *usecase.QueryService
	logger  *zap.Logger
}

func (h *queryHandler) query(c echo.Context) error {
	var req entities.QueryRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Failed to decode query request",
			zap.String("request_id", requestID(c)),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Server error: " + err.Error()})
	}

	res, err := h.service.Execute(c.Request().Context(), req)
	if err != nil {
		if domain.IsKind(err, domain.KindMissingField) {
			return c.JSON(http.StatusBadRequest, res)
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server error: " + err.Error()})
	}

	return c.JSON(http.StatusOK, res)
}

// RequireToken rejects requests without a valid bearer token
func RequireToken(signer *auth.Signer, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				logger.Warn("Query rejected: missing token", zap.String("request_id", requestID(c)))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			}

			claims, err := signer.ValidateToken(token)
			if err != nil {
				logger.Warn("Query rejected: invalid token",
					zap.String("request_id", requestID(c)),
					zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired JWT token"})
			}

			c.Set("subject", claims.Subject)
			return next(c)
		}
	}
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
