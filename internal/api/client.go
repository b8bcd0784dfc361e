package api

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
)

var trackerLog = logging.Logger("tracker")

// TrackerClient подключается к серверу, ищет мяч на кадрах и шлёт координаты
type TrackerClient struct {
	name     string
	detector port.BallDetector

	// SendInterval — период отправки последнего предсказания
	SendInterval time.Duration
	// QueueSize — размер очереди кадров на детекцию
	QueueSize int
}

// NewTrackerClient создаёт клиента с интервалом отправки по умолчанию (100 мс)
func NewTrackerClient(name string, detector port.BallDetector) *TrackerClient {
	return &TrackerClient{
		name:         name,
		detector:     detector,
		SendInterval: 100 * time.Millisecond,
		QueueSize:    8,
	}
}

// prediction — последнее успешное предсказание детектора
type prediction struct {
	mu  sync.Mutex
	pt  entity.Point
	seq uint64
	ok  bool
}

func (p *prediction) set(pt entity.Point, seq uint64) {
	p.mu.Lock()
	p.pt, p.seq, p.ok = pt, seq, true
	p.mu.Unlock()
}

func (p *prediction) get() (entity.Point, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pt, p.seq, p.ok
}

// Run подключается к адресу и работает до отмены контекста или закрытия соединения
func (c *TrackerClient) Run(ctx context.Context, addr string) error {
	if c.detector == nil {
		return errors.New("detector is not configured")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "dial %s", addr)
	}
	defer conn.Close()

	r := bufio.NewReader(conn)

	offer, err := ReadEnvelope(r)
	if err != nil {
		return errors.Wrap(err, "read offer")
	}
	if offer.Type != TypeOffer {
		return errors.Errorf("unexpected message type %q, want %q", offer.Type, TypeOffer)
	}
	trackerLog.Infof("connected to %q: session %s, %dx%d @ %d fps",
		offer.Name, offer.Session, offer.Width, offer.Height, offer.FPS)

	var writeMu sync.Mutex
	if err := WriteEnvelope(conn, &Envelope{Type: TypeAnswer, Name: c.name}); err != nil {
		return err
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Закрытие соединения выбивает блокирующее чтение при отмене контекста.
	// Перед закрытием по возможности прощаемся, чтобы сервер завершил сессию штатно.
	go func() {
		<-connCtx.Done()
		writeMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = WriteEnvelope(conn, &Envelope{Type: TypeBye})
		writeMu.Unlock()
		_ = conn.Close()
	}()

	frames := make(chan *entity.Frame, c.QueueSize)
	pred := &prediction{}

	var workers sync.WaitGroup

	workers.Add(1)
	go func() {
		defer workers.Done()
		c.detectLoop(connCtx, frames, pred)
	}()

	workers.Add(1)
	go func() {
		defer workers.Done()
		c.sendLoop(connCtx, cancel, conn, &writeMu, pred)
	}()

	runErr := c.receiveLoop(connCtx, r, frames)

	close(frames)
	cancel()
	workers.Wait()

	return runErr
}

// receiveLoop читает конверты сервера и раскладывает кадры в очередь
func (c *TrackerClient) receiveLoop(ctx context.Context, r *bufio.Reader, frames chan *entity.Frame) error {
	for {
		env, err := ReadEnvelope(r)
		if err != nil {
			if ctx.Err() != nil || err == io.EOF {
				return nil
			}
			return err
		}

		switch env.Type {
		case TypeFrame:
			frame, err := ReadFrameData(r, env)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			c.enqueue(frames, frame)

		case TypeBye:
			trackerLog.Infof("server closed the session")
			return nil

		default:
			trackerLog.Warnf("unknown message type %q", env.Type)
		}
	}
}

// enqueue кладёт кадр в очередь, вытесняя самый старый при переполнении
func (c *TrackerClient) enqueue(frames chan *entity.Frame, frame *entity.Frame) {
	select {
	case frames <- frame:
		return
	default:
	}

	// Очередь полна: детектор не успевает, свежий кадр важнее старого.
	select {
	case <-frames:
	default:
	}
	select {
	case frames <- frame:
	default:
	}
}

// detectLoop прогоняет кадры через детектор и обновляет предсказание
func (c *TrackerClient) detectLoop(ctx context.Context, frames <-chan *entity.Frame, pred *prediction) {
	for frame := range frames {
		pt, found, err := c.detector.Detect(ctx, frame)
		if err != nil {
			trackerLog.Warnf("detect frame %d: %v", frame.Seq, err)
			continue
		}
		if !found {
			continue
		}
		pred.set(pt, frame.Seq)
	}
}

// sendLoop периодически отправляет последнее предсказание серверу
func (c *TrackerClient) sendLoop(ctx context.Context, cancel context.CancelFunc, conn net.Conn, writeMu *sync.Mutex, pred *prediction) {
	interval := c.SendInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pt, seq, ok := pred.get()
			if !ok {
				continue
			}
			trackerLog.Debugf("sending coordinates: (%d,%d) for frame %d", pt.X, pt.Y, seq)

			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := WriteEnvelope(conn, &Envelope{Type: TypeCoords, X: pt.X, Y: pt.Y, Seq: seq})
			writeMu.Unlock()
			if err != nil {
				if ctx.Err() == nil {
					trackerLog.Warnf("send coordinates: %v", err)
				}
				cancel()
				return
			}
		}
	}
}
