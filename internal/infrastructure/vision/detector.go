//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"ball-tracker/internal/domain/entity"
)

// GoCVDetector ищет яркий мяч порогом и поиском контуров
type GoCVDetector struct {
	Threshold float32 // порог бинаризации яркости
	MinArea   float64 // минимальная площадь контура в пикселях
}

// NewGoCVDetector создаёт детектор с порогом по умолчанию
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{
		Threshold: 250,
		MinArea:   4,
	}
}

// Detect возвращает центр наибольшего яркого контура на кадре
func (d *GoCVDetector) Detect(ctx context.Context, frame *entity.Frame) (entity.Point, bool, error) {
	_ = ctx
	if frame == nil {
		return entity.Point{}, false, errors.New("frame is nil")
	}
	if len(frame.Data) != frame.Width*frame.Height*3 {
		return entity.Point{}, false, fmt.Errorf("frame data size mismatch: got %d bytes for %dx%d", len(frame.Data), frame.Width, frame.Height)
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return entity.Point{}, false, err
	}
	defer mat.Close()

	if mat.Empty() {
		return entity.Point{}, false, errors.New("empty frame")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(gray, &thresh, d.Threshold, 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	// Берём наибольший контур: мяч один и он самый крупный яркий объект.
	best := -1
	bestArea := d.MinArea
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area >= bestArea {
			bestArea = area
			best = i
		}
	}
	if best < 0 {
		return entity.Point{}, false, nil
	}

	x, y, _ := gocv.MinEnclosingCircle(contours.At(best))
	return entity.Point{X: int(x), Y: int(y)}, true, nil
}
