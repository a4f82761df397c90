package domain

import "time"

// Channel identifies where a user message came from.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelVoice    Channel = "voice"
)

// Outcome classifies how the assistant produced its reply.
type Outcome string

const (
	OutcomeGreeting Outcome = "greeting"
	OutcomeAnswer   Outcome = "answer"
	OutcomeFallback Outcome = "fallback"
)

// Understanding is the per-request output of the NLU pipeline. It is computed
// from the raw utterance and the Lexicon and never cached.
type Understanding struct {
	NormalizedText string `json:"normalized_text"`
	Product        string `json:"product,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Query          string `json:"query,omitempty"`
}

// Answer is the assistant's reply to one utterance.
type Answer struct {
	Text          string        `json:"text"`
	Outcome       Outcome       `json:"outcome"`
	Understanding Understanding `json:"understanding"`
}

// Inbound message types.
const (
	MessageTypeText  = "text"
	MessageTypeAudio = "audio"
)

// InboundMessage is a parsed messaging-platform event.
type InboundMessage struct {
	From      string `json:"from"`
	Type      string `json:"type"` // MessageTypeText or MessageTypeAudio
	Text      string `json:"text,omitempty"`
	MediaID   string `json:"media_id,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// ConversationTurn is the persisted audit record of one exchange.
type ConversationTurn struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Channel   string    `gorm:"index" json:"channel"`
	UserText  string    `json:"user_text"`
	Reply     string    `json:"reply"`
	Intent    string    `json:"intent,omitempty"`
	Product   string    `json:"product,omitempty"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}
