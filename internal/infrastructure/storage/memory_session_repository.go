package storage

import (
	"context"
	"sync"

	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions []*entity.TrackingSession
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{}
}

// Save сохраняет копию сессии
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.TrackingSession) error {
	_ = ctx

	copied := *session

	r.mu.Lock()
	r.sessions = append(r.sessions, &copied)
	r.mu.Unlock()

	return nil
}

// List возвращает последние сессии, свежие первыми
func (r *MemorySessionRepository) List(ctx context.Context, limit int) ([]*entity.TrackingSession, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.sessions) {
		limit = len(r.sessions)
	}

	result := make([]*entity.TrackingSession, 0, limit)
	for i := len(r.sessions) - 1; i >= 0 && len(result) < limit; i-- {
		copied := *r.sessions[i]
		result = append(result, &copied)
	}

	return result, nil
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
