package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/ports"
	"github.com/bankislami/voicebot/internal/service/assistant"
)

// ConversationHandler serves the direct text and voice endpoints.
type ConversationHandler struct {
	assistant   *assistant.Service
	transcriber ports.Transcriber
	synthesizer ports.Synthesizer
	media       ports.MediaStore
	log         *zap.Logger
}

// NewConversationHandler creates the handler. transcriber and synthesizer may
// be nil; the audio endpoints then return 503.
func NewConversationHandler(
	assistant *assistant.Service,
	transcriber ports.Transcriber,
	synthesizer ports.Synthesizer,
	media ports.MediaStore,
	log *zap.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		assistant:   assistant,
		transcriber: transcriber,
		synthesizer: synthesizer,
		media:       media,
		log:         log,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

// Text answers one typed utterance.
func (h *ConversationHandler) Text(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing text"})
	}

	answer, err := h.assistant.Answer(c.Context(), req.Text, domain.ChannelWeb)
	if err != nil {
		h.log.Error("Text answer failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to answer"})
	}

	return c.JSON(fiber.Map{
		"text":          answer.Text,
		"outcome":       answer.Outcome,
		"understanding": answer.Understanding,
	})
}

// Audio answers one spoken utterance: multipart audio in, spoken reply out.
func (h *ConversationHandler) Audio(c *fiber.Ctx) error {
	if h.transcriber == nil || h.synthesizer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Speech services not configured"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing audio file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unreadable audio file"})
	}
	defer file.Close()

	audio := make([]byte, fileHeader.Size)
	if _, err := file.Read(audio); err != nil && fileHeader.Size > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unreadable audio file"})
	}
	if len(audio) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing audio file"})
	}

	transcript, err := h.transcriber.Transcribe(c.Context(), audio, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.log.Error("Transcription failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Transcription failed"})
	}

	answer, err := h.assistant.Answer(c.Context(), transcript, domain.ChannelVoice)
	if err != nil {
		h.log.Error("Audio answer failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to answer"})
	}

	spoken, err := h.synthesizer.Synthesize(c.Context(), answer.Text)
	if err != nil {
		h.log.Error("Synthesis failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Synthesis failed"})
	}

	c.Set(fiber.HeaderContentType, h.synthesizer.ContentType())
	return c.Send(spoken)
}

// TTS synthesizes arbitrary text. Used by the web client to voice replies.
func (h *ConversationHandler) TTS(c *fiber.Ctx) error {
	if h.synthesizer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Speech services not configured"})
	}

	text := c.Query("text")
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing text"})
	}

	spoken, err := h.synthesizer.Synthesize(c.Context(), text)
	if err != nil {
		h.log.Error("Synthesis failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Synthesis failed"})
	}

	c.Set(fiber.HeaderContentType, h.synthesizer.ContentType())
	return c.Send(spoken)
}

// Media serves stored reply audio by id, for link-based WhatsApp delivery.
func (h *ConversationHandler) Media(c *fiber.Ctx) error {
	if h.media == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	}

	item, err := h.media.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	}

	c.Set(fiber.HeaderContentType, item.ContentType)
	return c.Send(item.Data)
}
