package ports

import (
	"context"

	"github.com/bankislami/voicebot/internal/domain"
)

// ConversationRepository persists exchanged turns for audit and review.
type ConversationRepository interface {
	Save(ctx context.Context, turn *domain.ConversationTurn) error
	FindRecent(ctx context.Context, limit int) ([]domain.ConversationTurn, error)
}
