package app

import (
	"context"
	"errors"
	"sync"

	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
)

// defaultHistoryLimit — сколько последних кадров помним для сверки координат
// (10 секунд при 30 fps)
const defaultHistoryLimit = 300

// StreamService управляет симуляцией мяча и отрисовкой кадров
type StreamService struct {
	renderer port.FrameRenderer
	ball     *entity.Ball
	width    int
	height   int
	fps      int

	mu      sync.Mutex
	seq     uint64
	pts     int64
	history map[uint64]entity.Point
	order   []uint64
	limit   int
}

// NewStreamService создаёт сервис потока с мячом и отрисовщиком
func NewStreamService(renderer port.FrameRenderer, ball *entity.Ball, width, height, fps int) *StreamService {
	return &StreamService{
		renderer: renderer,
		ball:     ball,
		width:    width,
		height:   height,
		fps:      fps,
		history:  make(map[uint64]entity.Point),
		limit:    defaultHistoryLimit,
	}
}

// Width возвращает ширину кадра
func (s *StreamService) Width() int { return s.width }

// Height возвращает высоту кадра
func (s *StreamService) Height() int { return s.height }

// FPS возвращает частоту кадров
func (s *StreamService) FPS() int { return s.fps }

// NextFrame сдвигает мяч, отрисовывает кадр и запоминает фактический центр
func (s *StreamService) NextFrame(ctx context.Context) (*entity.Frame, error) {
	if s.renderer == nil {
		return nil, errors.New("renderer is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ball.UpdatePosition(s.width, s.height)

	data, err := s.renderer.RenderFrame(ctx, s.ball, s.width, s.height)
	if err != nil {
		return nil, err
	}

	s.seq++
	frame := &entity.Frame{
		Seq:    s.seq,
		PTS:    s.pts,
		Width:  s.width,
		Height: s.height,
		Data:   data,
	}
	s.pts += entity.PTSStep(s.fps)

	s.remember(s.seq, s.ball.Center())

	return frame, nil
}

// ActualAt возвращает фактический центр мяча на кадре с данным номером
func (s *StreamService) ActualAt(seq uint64) (entity.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.history[seq]
	return pt, ok
}

// remember сохраняет центр кадра и выбрасывает самые старые записи
func (s *StreamService) remember(seq uint64, pt entity.Point) {
	s.history[seq] = pt
	s.order = append(s.order, seq)
	for len(s.order) > s.limit {
		delete(s.history, s.order[0])
		s.order = s.order[1:]
	}
}
