package api

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"ball-tracker/internal/domain/entity"
)

// Типы сообщений протокола
const (
	TypeOffer  = "offer"  // сервер -> клиент: параметры потока
	TypeAnswer = "answer" // клиент -> сервер: имя клиента
	TypeFrame  = "frame"  // сервер -> клиент: конверт кадра + сырые байты
	TypeCoords = "coords" // клиент -> сервер: предсказанные координаты
	TypeBye    = "bye"    // любая сторона: завершение сессии
)

// MaxFrameSize — верхняя граница размера тела кадра в байтах
const MaxFrameSize = 1 << 24

// Envelope — управляющее сообщение протокола, одна JSON-строка.
// Конверт типа frame сопровождается Size сырыми байтами кадра сразу
// после перевода строки.
type Envelope struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Name    string `json:"name,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	FPS     int    `json:"fps,omitempty"`
	Seq     uint64 `json:"seq,omitempty"`
	PTS     int64  `json:"pts,omitempty"`
	Size    int    `json:"size,omitempty"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// WriteEnvelope пишет сообщение и перевод строки
func WriteEnvelope(w io.Writer, env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "encode envelope")
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write envelope")
	}

	return nil
}

// ReadEnvelope читает одну JSON-строку протокола.
// Ошибки чтения (включая io.EOF) возвращаются как есть.
func ReadEnvelope(r *bufio.Reader) (*Envelope, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}

	return &env, nil
}

// WriteFrame пишет кадровый конверт и сырые байты кадра
func WriteFrame(w io.Writer, frame *entity.Frame) error {
	env := &Envelope{
		Type:   TypeFrame,
		Seq:    frame.Seq,
		PTS:    frame.PTS,
		Width:  frame.Width,
		Height: frame.Height,
		Size:   len(frame.Data),
	}

	if err := WriteEnvelope(w, env); err != nil {
		return err
	}

	if _, err := w.Write(frame.Data); err != nil {
		return errors.Wrap(err, "write frame data")
	}

	return nil
}

// ReadFrameData читает тело кадра, следующее за конвертом типа frame
func ReadFrameData(r *bufio.Reader, env *Envelope) (*entity.Frame, error) {
	if env.Type != TypeFrame {
		return nil, errors.Errorf("unexpected envelope type %q, want %q", env.Type, TypeFrame)
	}
	if env.Size <= 0 || env.Size > MaxFrameSize {
		return nil, errors.Errorf("invalid frame size %d", env.Size)
	}

	data := make([]byte, env.Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrap(err, "read frame data")
	}

	return &entity.Frame{
		Seq:    env.Seq,
		PTS:    env.PTS,
		Width:  env.Width,
		Height: env.Height,
		Data:   data,
	}, nil
}
