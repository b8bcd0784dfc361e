package port

import (
	"context"

	"ball-tracker/internal/domain/entity"
)

// BallDetector интерфейс детектора мяча
type BallDetector interface {
	// Detect ищет мяч на кадре и возвращает его центр;
	// второй результат false, если мяч не найден
	Detect(ctx context.Context, frame *entity.Frame) (entity.Point, bool, error)
}
