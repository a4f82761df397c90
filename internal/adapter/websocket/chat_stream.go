// Package websocket streams the chat over one connection: text or audio
// frames in, answer JSON out.
package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/ports"
	"github.com/bankislami/voicebot/internal/service/assistant"
)

// ChatStreamHandler answers over a websocket. Text frames carry the
// utterance; binary frames carry audio to transcribe first.
type ChatStreamHandler struct {
	assistant   *assistant.Service
	transcriber ports.Transcriber
	synthesizer ports.Synthesizer
	log         *zap.Logger
}

// NewChatStreamHandler creates the handler. transcriber and synthesizer may
// be nil; binary frames are then rejected and replies are text only.
func NewChatStreamHandler(
	assistant *assistant.Service,
	transcriber ports.Transcriber,
	synthesizer ports.Synthesizer,
	log *zap.Logger,
) *ChatStreamHandler {
	return &ChatStreamHandler{
		assistant:   assistant,
		transcriber: transcriber,
		synthesizer: synthesizer,
		log:         log,
	}
}

type streamReply struct {
	Text          string               `json:"text"`
	Audio         string               `json:"audio,omitempty"` // base64
	Outcome       domain.Outcome       `json:"outcome"`
	Understanding domain.Understanding `json:"understanding"`
	Error         string               `json:"error,omitempty"`
}

// HandleChatStream runs the per-connection loop until the client hangs up.
func (h *ChatStreamHandler) HandleChatStream(c *websocket.Conn) {
	ctx := context.Background()

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			h.log.Debug("WebSocket closed", zap.Error(err))
			break
		}

		var userText string
		switch messageType {
		case websocket.TextMessage:
			userText = string(data)
		case websocket.BinaryMessage:
			if h.transcriber == nil {
				h.send(c, &streamReply{Error: "speech services not configured"})
				continue
			}
			userText, err = h.transcriber.Transcribe(ctx, data, "stream", "")
			if err != nil {
				h.log.Error("Stream transcription failed", zap.Error(err))
				h.send(c, &streamReply{Error: "transcription failed"})
				continue
			}
		default:
			continue
		}

		answer, err := h.assistant.Answer(ctx, userText, domain.ChannelWeb)
		if err != nil {
			h.log.Error("Stream answer failed", zap.Error(err))
			h.send(c, &streamReply{Error: "failed to answer"})
			continue
		}

		reply := &streamReply{
			Text:          answer.Text,
			Outcome:       answer.Outcome,
			Understanding: answer.Understanding,
		}
		if h.synthesizer != nil {
			if audio, err := h.synthesizer.Synthesize(ctx, answer.Text); err == nil {
				reply.Audio = base64.StdEncoding.EncodeToString(audio)
			} else {
				h.log.Warn("Stream synthesis failed", zap.Error(err))
			}
		}

		if !h.send(c, reply) {
			break
		}
	}
}

func (h *ChatStreamHandler) send(c *websocket.Conn, reply *streamReply) bool {
	data, err := json.Marshal(reply)
	if err != nil {
		h.log.Error("Failed to encode stream reply", zap.Error(err))
		return true
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		h.log.Error("Failed to write stream reply", zap.Error(err))
		return false
	}
	return true
}

// SetupChatRoutes mounts the websocket endpoint.
func SetupChatRoutes(app *fiber.App, handler *ChatStreamHandler) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(handler.HandleChatStream))
}
