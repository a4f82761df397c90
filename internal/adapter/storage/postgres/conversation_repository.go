package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/ports"
)

type ConversationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewConversationRepository(db *gorm.DB, log *zap.Logger) ports.ConversationRepository {
	return &ConversationRepository{
		db:  db,
		log: log,
	}
}

func (r *ConversationRepository) Save(ctx context.Context, turn *domain.ConversationTurn) error {
	return r.db.WithContext(ctx).Create(turn).Error
}

func (r *ConversationRepository) FindRecent(ctx context.Context, limit int) ([]domain.ConversationTurn, error) {
	var turns []domain.ConversationTurn
	err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&turns).Error
	return turns, err
}
