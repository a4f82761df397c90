package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/service/admin"
	"github.com/bankislami/voicebot/internal/service/whatsapp"
)

// AdminHandler serves the operational endpoints: login, audit log, WhatsApp
// push and diagnose.
type AdminHandler struct {
	admin *admin.Service
	wa    *whatsapp.Service
	log   *zap.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(adminSvc *admin.Service, wa *whatsapp.Service, log *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: adminSvc, wa: wa, log: log}
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

// Login exchanges the admin API key for a JWT.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.APIKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing api_key"})
	}

	token, err := h.admin.Login(req.APIKey)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API key"})
	}

	return c.JSON(fiber.Map{"token": token})
}

// Turns lists recent conversation turns for audit.
func (h *AdminHandler) Turns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	turns, err := h.admin.RecentTurns(c.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list conversation turns", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Audit log unavailable"})
	}

	return c.JSON(fiber.Map{"turns": turns})
}

type pushRequest struct {
	Text string `json:"text"`
	To   string `json:"to"`
}

// Push sends an outbound WhatsApp text, e.g. a campaign or test message.
func (h *AdminHandler) Push(c *fiber.Ctx) error {
	if h.wa == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "WhatsApp not configured"})
	}

	var req pushRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing text"})
	}

	to := h.wa.Recipient(req.To)
	if to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing recipient"})
	}

	if err := h.wa.SendText(c.Context(), to, req.Text); err != nil {
		h.log.Error("Push message failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to send message"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// Diagnose reports WhatsApp credential presence, optionally checking the
// access token against the platform.
func (h *AdminHandler) Diagnose(c *fiber.Ctx) error {
	if h.wa == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "WhatsApp not configured"})
	}

	checkToken := c.QueryBool("check_token", false)
	return c.JSON(h.wa.Diagnose(c.Context(), checkToken))
}
