package email

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeProvider struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
	isHTML  bool
}

func (f *fakeProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body, isHTML: isHTML})
	return nil
}

func TestNewService_UnknownProvider(t *testing.T) {
	_, err := NewService(&Config{Provider: "pigeon"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewService_SendGridRequiresKey(t *testing.T) {
	_, err := NewService(&Config{Provider: "sendgrid"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewService_DefaultsToSMTP(t *testing.T) {
	svc, err := NewService(nil, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := svc.provider.(*SMTPProvider); !ok {
		t.Errorf("expected SMTP provider by default, got %T", svc.provider)
	}
}

func TestSend_DelegatesToProvider(t *testing.T) {
	provider := &fakeProvider{}
	svc := &Service{config: DefaultConfig(), provider: provider, log: zap.NewNop()}

	err := svc.Send(context.Background(), "support@bankislami.example", "Voicebot handoff", "could not answer", false)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(provider.sent) != 1 {
		t.Fatalf("expected 1 sent mail, got %d", len(provider.sent))
	}
	mail := provider.sent[0]
	if mail.to != "support@bankislami.example" || mail.subject != "Voicebot handoff" {
		t.Errorf("unexpected mail %+v", mail)
	}
	if mail.isHTML {
		t.Error("expected plain text mail")
	}
}

func TestSend_ProviderErrorWrapped(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	svc := &Service{config: DefaultConfig(), provider: provider, log: zap.NewNop()}

	if err := svc.Send(context.Background(), "a@b.c", "s", "b", false); err == nil {
		t.Fatal("expected error")
	}
}
