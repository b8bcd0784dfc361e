//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"ball-tracker/internal/domain/entity"
)

// GoCVRenderer отрисовывает кадры с мячом через OpenCV
type GoCVRenderer struct{}

// NewGoCVRenderer создаёт отрисовщик кадров
func NewGoCVRenderer() *GoCVRenderer {
	return &GoCVRenderer{}
}

// RenderFrame рисует белый залитый круг на чёрном кадре BGR24
func (r *GoCVRenderer) RenderFrame(ctx context.Context, ball *entity.Ball, width, height int) ([]byte, error) {
	_ = ctx
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid frame size")
	}
	if ball == nil {
		return nil, errors.New("ball is nil")
	}

	mat := gocv.Zeros(height, width, gocv.MatTypeCV8UC3)
	defer mat.Close()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.Circle(&mat, image.Pt(ball.X, ball.Y), ball.Radius, white, -1)

	data, err := mat.ToBytes()
	if err != nil {
		return nil, err
	}

	return data, nil
}
