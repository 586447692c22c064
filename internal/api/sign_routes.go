package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/internal/websocket"
)

// AssetsPrefix is the URL path GIF assets are served under
const AssetsPrefix = "/assets"

// InitSignRoutes registers the sign web session endpoints
func InitSignRoutes(e *echo.Echo, hub *websocket.Hub, assetsDir string, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "sign-service",
		})
	})

	e.Static(AssetsPrefix, assetsDir)

	v1 := e.Group("/api/v1")
	v1.GET("/signs", func(c echo.Context) error {
		return listSigns(c, hub)
	})
	v1.POST("/signs/translate", func(c echo.Context) error {
		return translate(c, hub, logger)
	})

	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})
}

func listSigns(c echo.Context, hub *websocket.Hub) error {
	resp := SignListResponse{Signs: []SignAsset{}}
	for _, entry := range hub.Table().Entries() {
		resp.Signs = append(resp.Signs, SignAsset{Phrase: entry.Phrase, File: entry.File, URL: hub.AssetURL(entry.File)})
	}
	return c.JSON(http.StatusOK, resp)
}

func translate(c echo.Context, hub *websocket.Hub, logger *zap.Logger) error {
	var req TranslateRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Failed to bind translate request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing 'text' field in request body"})
	}

	msg := hub.Translate(req.Text)
	resp := TranslateResponse{
		Text:      req.Text,
		Matches:   make([]SignAsset, 0, len(msg.Clips)),
		Unmatched: msg.Unmatched,
		Message:   msg.Message,
	}
	for _, clip := range msg.Clips {
		resp.Matches = append(resp.Matches, SignAsset{Phrase: clip.Phrase, File: clip.File, URL: clip.URL})
	}
	return c.JSON(http.StatusOK, resp)
}
