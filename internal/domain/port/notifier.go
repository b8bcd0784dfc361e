package port

import (
	"context"

	"ball-tracker/internal/domain/entity"
)

// Notifier интерфейс уведомлений о завершённых сессиях
type Notifier interface {
	// NotifySessionFinished отправляет итоговую статистику сессии
	NotifySessionFinished(ctx context.Context, session *entity.TrackingSession) error
}
