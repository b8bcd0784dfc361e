//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"ball-tracker/internal/domain/entity"
)

// GoCVRenderer заглушка отрисовщика (без OpenCV)
type GoCVRenderer struct{}

// NewGoCVRenderer создаёт отрисовщик-заглушку (без OpenCV)
func NewGoCVRenderer() *GoCVRenderer {
	return &GoCVRenderer{}
}

// RenderFrame возвращает ошибку, если сборка без тега gocv
func (r *GoCVRenderer) RenderFrame(ctx context.Context, ball *entity.Ball, width, height int) ([]byte, error) {
	_ = ctx
	_ = ball
	_ = width
	_ = height
	return nil, errors.New("gocv build tag is not enabled")
}
