package port

import (
	"context"

	"ball-tracker/internal/domain/entity"
)

// FrameRenderer интерфейс отрисовщика кадров
type FrameRenderer interface {
	// RenderFrame рисует мяч на чёрном кадре и возвращает сырые BGR-байты
	RenderFrame(ctx context.Context, ball *entity.Ball, width, height int) ([]byte, error)
}
