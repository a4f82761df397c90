package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/adapter/queue"
	"github.com/bankislami/voicebot/internal/observability/telemetry"
	"github.com/bankislami/voicebot/internal/service/whatsapp"
	"github.com/bankislami/voicebot/internal/worker"
)

// WebhookHandler accepts WhatsApp webhook traffic. Events are queued and
// acknowledged immediately; the platform retries on anything but a fast 200.
type WebhookHandler struct {
	wa  *whatsapp.Service
	mq  queue.MessageQueue
	log *zap.Logger
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(wa *whatsapp.Service, mq queue.MessageQueue, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{wa: wa, mq: mq, log: log}
}

// Verify answers the platform's subscription challenge.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.wa.VerifyToken() && challenge != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(challenge)
	}

	h.log.Warn("Webhook verification rejected", zap.String("mode", mode))
	return c.Status(fiber.StatusForbidden).SendString("Forbidden")
}

// Events receives webhook events and queues user messages for the consumer.
// Always returns ok: bouncing an event only makes the platform resend it.
func (h *WebhookHandler) Events(c *fiber.Ctx) error {
	msg, ok := whatsapp.ParseWebhook(c.Body())
	if !ok {
		telemetry.WebhookEventsTotal.WithLabelValues("unknown", "skipped").Inc()
		return c.JSON(fiber.Map{"ok": true})
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("Failed to encode inbound message", zap.Error(err))
		return c.JSON(fiber.Map{"ok": true})
	}

	if err := h.mq.Publish(worker.SubjectInbound, data); err != nil {
		h.log.Error("Failed to queue inbound message",
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		telemetry.WebhookEventsTotal.WithLabelValues(msg.Type, "queue_error").Inc()
		return c.JSON(fiber.Map{"ok": true})
	}

	telemetry.WebhookEventsTotal.WithLabelValues(msg.Type, "queued").Inc()
	h.log.Info("Webhook event queued",
		zap.String("type", msg.Type),
		zap.String("from", msg.From),
	)
	return c.JSON(fiber.Map{"ok": true})
}
