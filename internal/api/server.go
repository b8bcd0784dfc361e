package api

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	app "ball-tracker/internal/application"
	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
)

var log = logging.Logger("stream")

// writeTimeout ограничивает запись в соединение, чтобы зависший клиент
// не держал сессию вечно
const writeTimeout = 5 * time.Second

// StreamServer принимает подключения трекеров и раздаёт кадры.
// Каждое подключение получает собственную симуляцию мяча и сессию слежения.
type StreamServer struct {
	name      string
	newStream func() *app.StreamService
	repo      port.SessionRepository
	notifier  port.Notifier

	mu     sync.RWMutex
	ln     net.Listener
	active map[string]*app.TrackingService

	wg sync.WaitGroup
}

// NewStreamServer создаёт сервер с фабрикой симуляций
func NewStreamServer(name string, newStream func() *app.StreamService, repo port.SessionRepository, notifier port.Notifier) *StreamServer {
	return &StreamServer{
		name:      name,
		newStream: newStream,
		repo:      repo,
		notifier:  notifier,
		active:    make(map[string]*app.TrackingService),
	}
}

// Addr возвращает адрес слушателя (nil, пока Serve не запущен)
func (s *StreamServer) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveSessions возвращает снимки статистики живых сессий
func (s *StreamServer) ActiveSessions() []entity.TrackingSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]entity.TrackingSession, 0, len(s.active))
	for _, tracking := range s.active {
		sessions = append(sessions, tracking.Snapshot())
	}
	return sessions
}

// Serve слушает адрес и обрабатывает подключения до отмены контекста
func (s *StreamServer) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	log.Infof("%s is listening on %s", s.name, ln.Addr())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return errors.Wrap(err, "accept")
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}

	s.wg.Wait()
	return nil
}

// handleConn ведёт одну сессию: рукопожатие, поток кадров, приём координат
func (s *StreamServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	stream := s.newStream()
	session := entity.NewTrackingSession(newSessionID(), "")
	tracking := app.NewTrackingService(session, s.repo, s.notifier)

	r := bufio.NewReader(conn)

	// Записи в соединение идут из двух горутин (кадры и bye).
	var writeMu sync.Mutex

	offer := &Envelope{
		Type:    TypeOffer,
		Session: session.ID,
		Name:    s.name,
		Width:   stream.Width(),
		Height:  stream.Height(),
		FPS:     stream.FPS(),
	}
	if err := WriteEnvelope(conn, offer); err != nil {
		log.Errorf("session %s: send offer: %v", session.ID, err)
		return
	}

	answer, err := ReadEnvelope(r)
	if err != nil {
		log.Errorf("session %s: read answer: %v", session.ID, err)
		return
	}
	if answer.Type != TypeAnswer {
		log.Errorf("session %s: unexpected message type %q, want %q", session.ID, answer.Type, TypeAnswer)
		return
	}
	tracking.SetClientName(answer.Name)
	log.Infof("session %s: client %q connected from %s", session.ID, answer.Name, conn.RemoteAddr())

	s.register(session.ID, tracking)
	defer s.unregister(session.ID)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Закрытие соединения выбивает блокирующее чтение при остановке сервера.
	go func() {
		<-connCtx.Done()
		_ = conn.Close()
	}()

	go s.streamFrames(connCtx, cancel, conn, &writeMu, stream, session.ID)

	s.readCoords(r, stream, tracking, session.ID)

	// Прощаемся до отмены контекста, иначе соединение закроется раньше.
	writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = WriteEnvelope(conn, &Envelope{Type: TypeBye})
	writeMu.Unlock()
	cancel()

	if err := tracking.Finish(context.Background()); err != nil {
		log.Errorf("session %s: finish: %v", session.ID, err)
	}

	snap := tracking.Snapshot()
	log.Infof("session %s finished: samples=%d mean=%.2f max=%.2f rms=%.2f",
		session.ID, snap.Samples, snap.MeanError, snap.MaxError, snap.RMSError)
}

// streamFrames шлёт кадры с частотой симуляции, пока сессия жива
func (s *StreamServer) streamFrames(ctx context.Context, cancel context.CancelFunc, conn net.Conn, writeMu *sync.Mutex, stream *app.StreamService, sessionID string) {
	defer cancel()

	fps := stream.FPS()
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := stream.NextFrame(ctx)
			if err != nil {
				log.Errorf("session %s: render frame: %v", sessionID, err)
				return
			}

			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err = WriteFrame(conn, frame)
			writeMu.Unlock()
			if err != nil {
				if ctx.Err() == nil {
					log.Warnf("session %s: send frame: %v", sessionID, err)
				}
				return
			}
		}
	}
}

// readCoords принимает координаты клиента и считает ошибку слежения
func (s *StreamServer) readCoords(r *bufio.Reader, stream *app.StreamService, tracking *app.TrackingService, sessionID string) {
	for {
		env, err := ReadEnvelope(r)
		if err != nil {
			return
		}

		switch env.Type {
		case TypeCoords:
			actual, ok := stream.ActualAt(env.Seq)
			if !ok {
				// Кадр уже вытеснен из истории, сверять не с чем.
				continue
			}
			predicted := entity.Point{X: env.X, Y: env.Y}
			trackErr := tracking.Observe(predicted, actual)
			log.Debugf("session %s: predicted=(%d,%d) actual=(%d,%d) error=%.2f",
				sessionID, predicted.X, predicted.Y, actual.X, actual.Y, trackErr)

		case TypeBye:
			return

		default:
			log.Warnf("session %s: unknown message type %q", sessionID, env.Type)
		}
	}
}

func (s *StreamServer) register(id string, tracking *app.TrackingService) {
	s.mu.Lock()
	s.active[id] = tracking
	s.mu.Unlock()
}

func (s *StreamServer) unregister(id string) {
	s.mu.Lock()
	delete(s.active, id)
	s.mu.Unlock()
}

// newSessionID генерирует короткий случайный идентификатор сессии
func newSessionID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "session-unknown"
	}
	return hex.EncodeToString(buf)
}
