// Package worker processes queued webhook events off the request path, so
// the platform gets its 200 immediately and slow STT or generation work
// happens in the background.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/adapter/queue"
	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/observability/telemetry"
	"github.com/bankislami/voicebot/internal/ports"
)

// SubjectInbound is the queue subject webhook handlers publish to.
const SubjectInbound = "whatsapp.inbound"

const eventTimeout = 2 * time.Minute

// Answerer produces the assistant's reply for one utterance.
type Answerer interface {
	Answer(ctx context.Context, rawText string, channel domain.Channel) (*domain.Answer, error)
}

// Recipienter maps a sender to the reply recipient (sandbox override).
type Recipienter interface {
	Recipient(from string) string
}

// WebhookConsumer replies to inbound WhatsApp messages from the queue.
type WebhookConsumer struct {
	assistant   Answerer
	messenger   ports.Messenger
	transcriber ports.Transcriber
	synthesizer ports.Synthesizer
	recipient   Recipienter
	log         *zap.Logger
}

// NewWebhookConsumer wires the consumer. transcriber and synthesizer may be
// nil: audio messages are then skipped and replies are text only.
func NewWebhookConsumer(
	assistant Answerer,
	messenger ports.Messenger,
	transcriber ports.Transcriber,
	synthesizer ports.Synthesizer,
	recipient Recipienter,
	log *zap.Logger,
) *WebhookConsumer {
	return &WebhookConsumer{
		assistant:   assistant,
		messenger:   messenger,
		transcriber: transcriber,
		synthesizer: synthesizer,
		recipient:   recipient,
		log:         log,
	}
}

// Start subscribes the consumer to the inbound subject.
func (c *WebhookConsumer) Start(mq queue.MessageQueue) error {
	return mq.Subscribe(SubjectInbound, c.handle)
}

// handle processes one queued event. Errors are returned for the queue's
// logging but never stop the subscription; each event is isolated.
func (c *WebhookConsumer) handle(data []byte) error {
	var msg domain.InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		telemetry.WebhookEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		return fmt.Errorf("worker: decode inbound message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case domain.MessageTypeText:
		err = c.handleText(ctx, &msg)
	case domain.MessageTypeAudio:
		err = c.handleAudio(ctx, &msg)
	default:
		telemetry.WebhookEventsTotal.WithLabelValues(msg.Type, "ignored").Inc()
		return nil
	}

	status := "ok"
	if err != nil {
		status = "error"
		c.log.Error("Webhook event failed",
			zap.String("type", msg.Type),
			zap.String("from", msg.From),
			zap.Error(err),
		)
	}
	telemetry.WebhookEventsTotal.WithLabelValues(msg.Type, status).Inc()
	return err
}

func (c *WebhookConsumer) handleText(ctx context.Context, msg *domain.InboundMessage) error {
	answer, err := c.assistant.Answer(ctx, msg.Text, domain.ChannelWhatsApp)
	if err != nil {
		return fmt.Errorf("worker: answer text message: %w", err)
	}
	return c.reply(ctx, c.recipient.Recipient(msg.From), answer.Text)
}

func (c *WebhookConsumer) handleAudio(ctx context.Context, msg *domain.InboundMessage) error {
	if c.transcriber == nil {
		c.log.Warn("Audio message skipped, no transcriber configured", zap.String("from", msg.From))
		return nil
	}

	audio, mediaType, err := c.messenger.DownloadMedia(ctx, msg.MediaID)
	if err != nil {
		return fmt.Errorf("worker: download media: %w", err)
	}
	if msg.MediaType != "" {
		mediaType = msg.MediaType
	}

	transcript, err := c.transcriber.Transcribe(ctx, audio, "audio", mediaType)
	if err != nil {
		return fmt.Errorf("worker: transcribe media: %w", err)
	}

	answer, err := c.assistant.Answer(ctx, transcript, domain.ChannelWhatsApp)
	if err != nil {
		return fmt.Errorf("worker: answer audio message: %w", err)
	}
	return c.reply(ctx, c.recipient.Recipient(msg.From), answer.Text)
}

// reply sends the text, then a spoken version of it. Synthesis failures are
// logged only; the user already has the text.
func (c *WebhookConsumer) reply(ctx context.Context, to, text string) error {
	if err := c.messenger.SendText(ctx, to, text); err != nil {
		return fmt.Errorf("worker: send reply text: %w", err)
	}

	if c.synthesizer == nil {
		return nil
	}
	audio, err := c.synthesizer.Synthesize(ctx, text)
	if err != nil {
		c.log.Warn("Reply synthesis failed", zap.Error(err))
		return nil
	}
	if err := c.messenger.SendAudio(ctx, to, audio, c.synthesizer.ContentType()); err != nil {
		c.log.Warn("Reply audio send failed", zap.Error(err))
	}
	return nil
}
