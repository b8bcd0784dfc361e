//go:build gocv
// +build gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ball-tracker/internal/domain/entity"
)

func TestRenderAndDetect(t *testing.T) {
	renderer := NewGoCVRenderer()
	detector := NewGoCVDetector()
	ctx := context.Background()

	ball := entity.NewBall(100, 80, 0, 0, 20)

	data, err := renderer.RenderFrame(ctx, ball, 320, 240)
	require.NoError(t, err)
	require.Len(t, data, 320*240*3)

	frame := &entity.Frame{Seq: 1, Width: 320, Height: 240, Data: data}

	pt, found, err := detector.Detect(ctx, frame)
	require.NoError(t, err)
	require.True(t, found)
	require.InDelta(t, ball.X, pt.X, 2)
	require.InDelta(t, ball.Y, pt.Y, 2)
}

func TestDetect_BlackFrameHasNoBall(t *testing.T) {
	detector := NewGoCVDetector()

	frame := &entity.Frame{Width: 64, Height: 48, Data: make([]byte, 64*48*3)}

	_, found, err := detector.Detect(context.Background(), frame)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDetect_SizeMismatch(t *testing.T) {
	detector := NewGoCVDetector()

	frame := &entity.Frame{Width: 64, Height: 48, Data: make([]byte, 10)}

	_, _, err := detector.Detect(context.Background(), frame)
	require.Error(t, err)
}

func TestRenderFrame_InvalidSize(t *testing.T) {
	renderer := NewGoCVRenderer()

	_, err := renderer.RenderFrame(context.Background(), entity.NewBall(1, 1, 0, 0, 1), 0, 0)
	require.Error(t, err)
}
