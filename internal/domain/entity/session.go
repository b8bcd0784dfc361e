package entity

import (
	"math"
	"time"
)

// TrackingSession хранит статистику ошибок слежения за одно соединение
type TrackingSession struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Samples    int       `json:"samples"`
	LastError  float64   `json:"last_error"`
	MeanError  float64   `json:"mean_error"`
	MaxError   float64   `json:"max_error"`
	RMSError   float64   `json:"rms_error"`

	sumSquares float64
}

// NewTrackingSession создаёт сессию с текущим временем старта
func NewTrackingSession(id, clientName string) *TrackingSession {
	return &TrackingSession{
		ID:         id,
		ClientName: clientName,
		StartedAt:  time.Now().UTC(),
	}
}

// AddSample добавляет одну ошибку предсказания и пересчитывает агрегаты
func (s *TrackingSession) AddSample(err float64) {
	s.Samples++
	s.LastError = err
	s.MeanError += (err - s.MeanError) / float64(s.Samples)
	if err > s.MaxError {
		s.MaxError = err
	}
	s.sumSquares += err * err
	s.RMSError = math.Sqrt(s.sumSquares / float64(s.Samples))
}

// Finish фиксирует время завершения сессии
func (s *TrackingSession) Finish() {
	s.FinishedAt = time.Now().UTC()
}

// Duration возвращает длительность сессии
func (s *TrackingSession) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
