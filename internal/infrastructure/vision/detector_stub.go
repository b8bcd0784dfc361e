//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"ball-tracker/internal/domain/entity"
)

// GoCVDetector заглушка детектора (без OpenCV)
type GoCVDetector struct {
	Threshold float32
	MinArea   float64
}

// NewGoCVDetector создаёт детектор-заглушку (без OpenCV)
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{
		Threshold: 250,
		MinArea:   4,
	}
}

// Detect возвращает ошибку, если сборка без тега gocv
func (d *GoCVDetector) Detect(ctx context.Context, frame *entity.Frame) (entity.Point, bool, error) {
	_ = ctx
	_ = frame
	return entity.Point{}, false, errors.New("gocv build tag is not enabled")
}
