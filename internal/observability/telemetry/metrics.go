package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversation metrics
	AnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebot_answers_total",
		Help: "Answers produced, by channel and outcome",
	}, []string{"channel", "outcome"})

	RetrievalLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebot_retrieval_latency_seconds",
		Help:    "Knowledge-base retrieval latency",
		Buckets: prometheus.DefBuckets,
	})

	GenerationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebot_generation_latency_seconds",
		Help:    "Answer generation latency",
		Buckets: prometheus.DefBuckets,
	})

	// Speech metrics
	TranscriptionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebot_transcription_latency_seconds",
		Help:    "Speech-to-text latency",
		Buckets: prometheus.DefBuckets,
	})

	SynthesisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebot_synthesis_latency_seconds",
		Help:    "Text-to-speech latency",
		Buckets: prometheus.DefBuckets,
	})

	// Messaging metrics
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebot_webhook_events_total",
		Help: "Inbound messaging events, by message type and processing status",
	}, []string{"type", "status"})

	MessagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebot_messages_sent_total",
		Help: "Outbound messages, by kind",
	}, []string{"kind"})
)
