package whatsapp

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/mocks"
	"github.com/bankislami/voicebot/internal/service/media"
)

const textWebhook = `{
  "entry": [{
    "changes": [{
      "value": {
        "metadata": {"phone_number_id": "123"},
        "messages": [{
          "from": "923001234567",
          "type": "text",
          "text": {"body": "account kholna hai"}
        }]
      }
    }]
  }]
}`

const audioWebhook = `{
  "entry": [{
    "changes": [{
      "value": {
        "messages": [{
          "from": "923001234567",
          "type": "audio",
          "audio": {"id": "media-77", "mime_type": "audio/ogg"}
        }]
      }
    }]
  }]
}`

const statusWebhook = `{
  "entry": [{
    "changes": [{
      "value": {
        "statuses": [{"id": "wamid.x", "status": "delivered"}]
      }
    }]
  }]
}`

func TestParseWebhook_TextMessage(t *testing.T) {
	msg, ok := ParseWebhook([]byte(textWebhook))
	if !ok {
		t.Fatal("expected a parsed message")
	}
	if msg.Type != domain.MessageTypeText {
		t.Errorf("unexpected type %q", msg.Type)
	}
	if msg.From != "923001234567" {
		t.Errorf("unexpected sender %q", msg.From)
	}
	if msg.Text != "account kholna hai" {
		t.Errorf("unexpected text %q", msg.Text)
	}
}

func TestParseWebhook_AudioMessage(t *testing.T) {
	msg, ok := ParseWebhook([]byte(audioWebhook))
	if !ok {
		t.Fatal("expected a parsed message")
	}
	if msg.Type != domain.MessageTypeAudio {
		t.Errorf("unexpected type %q", msg.Type)
	}
	if msg.MediaID != "media-77" {
		t.Errorf("unexpected media id %q", msg.MediaID)
	}
	if msg.MediaType != "audio/ogg" {
		t.Errorf("unexpected media type %q", msg.MediaType)
	}
}

func TestParseWebhook_IgnoresStatusEvents(t *testing.T) {
	if msg, ok := ParseWebhook([]byte(statusWebhook)); ok {
		t.Errorf("status events must be ignored, got %+v", msg)
	}
}

func TestParseWebhook_MalformedBody(t *testing.T) {
	if _, ok := ParseWebhook([]byte("not json")); ok {
		t.Error("malformed body must not parse")
	}
}

type fakeProvider struct {
	texts  map[string][]string
	audios map[string][]string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		texts:  make(map[string][]string),
		audios: make(map[string][]string),
	}
}

func (f *fakeProvider) SendText(ctx context.Context, to, body string) error {
	f.texts[to] = append(f.texts[to], body)
	return nil
}

func (f *fakeProvider) SendAudioLink(ctx context.Context, to, link string) error {
	f.audios[to] = append(f.audios[to], link)
	return nil
}

func (f *fakeProvider) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	return []byte("audio"), "audio/ogg", nil
}

func newTestService(t *testing.T, cfg Config) (*Service, *fakeProvider) {
	t.Helper()
	provider := newFakeProvider()
	store := media.NewStore(mocks.NewMockCache(), time.Minute, zap.NewNop())
	svc := &Service{
		provider: provider,
		media:    store,
		cfg:      cfg,
		log:      zap.NewNop(),
	}
	return svc, provider
}

func TestSendAudio_SendsMediaLink(t *testing.T) {
	svc, provider := newTestService(t, Config{PublicBaseURL: "https://bot.example.com/"})

	err := svc.SendAudio(context.Background(), "9230012345", []byte{1, 2}, "audio/mpeg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	links := provider.audios["9230012345"]
	if len(links) != 1 {
		t.Fatalf("expected 1 audio message, got %d", len(links))
	}
	if !strings.HasPrefix(links[0], "https://bot.example.com/media/") {
		t.Errorf("unexpected media link %q", links[0])
	}
}

func TestSendAudio_SkippedWithoutPublicURL(t *testing.T) {
	svc, provider := newTestService(t, Config{})

	if err := svc.SendAudio(context.Background(), "9230012345", []byte{1}, "audio/mpeg"); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	if len(provider.audios) != 0 {
		t.Error("no audio must be sent without a public base URL")
	}
}

func TestRecipient_Override(t *testing.T) {
	svc, _ := newTestService(t, Config{RecipientOverride: "920000000000"})
	if got := svc.Recipient("923001234567"); got != "920000000000" {
		t.Errorf("expected override recipient, got %q", got)
	}

	svc, _ = newTestService(t, Config{})
	if got := svc.Recipient("923001234567"); got != "923001234567" {
		t.Errorf("expected sender as recipient, got %q", got)
	}
}
