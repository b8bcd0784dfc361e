package port

import (
	"context"

	"ball-tracker/internal/domain/entity"
)

// SessionRepository интерфейс хранилища завершённых сессий
type SessionRepository interface {
	// Save сохраняет сессию
	Save(ctx context.Context, session *entity.TrackingSession) error

	// List возвращает последние сессии, не более limit
	List(ctx context.Context, limit int) ([]*entity.TrackingSession, error)
}
