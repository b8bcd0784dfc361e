package app

import (
	"context"
	"log"
	"sync"

	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
)

// TrackingService считает ошибку предсказаний и ведёт статистику сессии
type TrackingService struct {
	repo     port.SessionRepository
	notifier port.Notifier

	mu      sync.Mutex
	session *entity.TrackingSession
}

// NewTrackingService создаёт сервис слежения для одной сессии
func NewTrackingService(session *entity.TrackingSession, repo port.SessionRepository, notifier port.Notifier) *TrackingService {
	return &TrackingService{
		session:  session,
		repo:     repo,
		notifier: notifier,
	}
}

// SetClientName записывает имя клиента после рукопожатия
func (s *TrackingService) SetClientName(name string) {
	s.mu.Lock()
	s.session.ClientName = name
	s.mu.Unlock()
}

// Observe сравнивает предсказание с фактическим центром и возвращает ошибку в пикселях
func (s *TrackingService) Observe(predicted, actual entity.Point) float64 {
	err := predicted.Distance(actual)

	s.mu.Lock()
	s.session.AddSample(err)
	s.mu.Unlock()

	return err
}

// Snapshot возвращает копию текущей статистики сессии
func (s *TrackingService) Snapshot() entity.TrackingSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.session
}

// Finish закрывает сессию, сохраняет её и шлёт уведомление
func (s *TrackingService) Finish(ctx context.Context) error {
	s.mu.Lock()
	s.session.Finish()
	snapshot := *s.session
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(ctx, &snapshot); err != nil {
			return err
		}
	}

	// Уведомление не должно ронять завершение сессии.
	if s.notifier != nil {
		if err := s.notifier.NotifySessionFinished(ctx, &snapshot); err != nil {
			log.Printf("Error sending session notification: %v", err)
		}
	}

	return nil
}
