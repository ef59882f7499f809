package http

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/ports"
)

// maxUpdateBytes caps the webhook request body.
const maxUpdateBytes = 1 << 20

// Handler holds the HTTP handlers for the Telegram webhook.
type Handler struct {
	bot     ports.UpdateHandler
	botName string
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler dispatching updates to bot. botName is
// the bot username the landing page redirects to.
func NewHandler(bot ports.UpdateHandler, botName string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{bot: bot, botName: botName, logger: logger}
}

// RegisterRoutes sets up all routes on the given Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/", h.Landing)
	r.POST("/", h.Webhook)
}

// Health returns a simple health check response.
//
//	@Summary		Health check
//	@Description	Returns the health status of the bot
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Landing redirects browsers to the bot's Telegram page.
//
//	@Summary		Landing page
//	@Description	Returns an HTML page redirecting to https://t.me/<bot name>
//	@Tags			webhook
//	@Produce		html
//	@Success		200	{string}	string
//	@Router			/ [get]
func (h *Handler) Landing(c *gin.Context) {
	c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	c.Header("Cross-Origin-Resource-Policy", "same-origin")
	c.Header("Referrer-Policy", "no-referrer")
	c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	c.Header("X-Content-Type-Options", "nosniff")

	page := fmt.Sprintf(`<meta http-equiv="Refresh" content="0; URL=https://t.me/%s">`, html.EscapeString(h.botName))
	c.Data(http.StatusOK, "text/html", []byte(page))
}

// Webhook receives an update from Telegram and answers it before returning.
//
//	@Summary		Telegram webhook
//	@Description	Accepts a Telegram update. Private messages and group messages mentioning the bot
//	@Description	with an anime screenshot are searched on trace.moe and answered in the chat.
//	@Description	Delivery failures are logged and still acknowledged so Telegram does not redeliver.
//	@Tags			webhook
//	@Accept			json
//	@Param			update	body	domain.Update	true	"Telegram update"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Router			/ [post]
func (h *Handler) Webhook(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUpdateBytes)

	var update domain.Update
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		h.logger.Warn("rejected webhook body", zap.String("request_id", RequestID(c)), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid update body: " + err.Error(),
		})
		return
	}

	// Searches outlive a dropped webhook connection.
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.bot.HandleUpdate(ctx, update); err != nil {
		h.logger.Error("failed to answer update",
			zap.String("request_id", RequestID(c)),
			zap.Int64("update_id", update.UpdateID),
			zap.Error(err),
		)
	}

	c.Status(http.StatusNoContent)
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
