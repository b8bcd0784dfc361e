package api

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	app "ball-tracker/internal/application"
	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/infrastructure/storage"
)

type stubRenderer struct{}

func (stubRenderer) RenderFrame(ctx context.Context, ball *entity.Ball, width, height int) ([]byte, error) {
	return make([]byte, width*height*3), nil
}

func newTestStream() *app.StreamService {
	ball := entity.NewBall(32, 24, 2, 2, 5)
	return app.NewStreamService(stubRenderer{}, ball, 64, 48, 50)
}

func TestStreamServer_Session(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	srv := NewStreamServer("Server", newTestStream, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, "127.0.0.1:0")
	}()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)

	offer, err := ReadEnvelope(r)
	require.NoError(t, err)
	require.Equal(t, TypeOffer, offer.Type)
	require.Equal(t, "Server", offer.Name)
	require.Equal(t, 64, offer.Width)
	require.Equal(t, 48, offer.Height)
	require.Equal(t, 50, offer.FPS)
	require.NotEmpty(t, offer.Session)

	require.NoError(t, WriteEnvelope(conn, &Envelope{Type: TypeAnswer, Name: "TestTracker"}))

	var frameEnv *Envelope
	for frameEnv == nil {
		env, err := ReadEnvelope(r)
		require.NoError(t, err)
		if env.Type != TypeFrame {
			continue
		}
		frame, err := ReadFrameData(r, env)
		require.NoError(t, err)
		require.Len(t, frame.Data, 64*48*3)
		frameEnv = env
	}

	// Дальше кадры просто сливаем, чтобы сервер не упёрся в TCP-буфер.
	go func() { _, _ = io.Copy(io.Discard, r) }()

	require.NoError(t, WriteEnvelope(conn, &Envelope{Type: TypeCoords, X: 0, Y: 0, Seq: frameEnv.Seq}))

	require.Eventually(t, func() bool {
		sessions := srv.ActiveSessions()
		return len(sessions) == 1 && sessions[0].Samples == 1
	}, time.Second, 5*time.Millisecond)

	active := srv.ActiveSessions()
	require.Equal(t, "TestTracker", active[0].ClientName)
	require.Greater(t, active[0].LastError, 0.0)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		sessions, err := repo.List(context.Background(), 10)
		return err == nil && len(sessions) == 1
	}, time.Second, 5*time.Millisecond)

	sessions, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, "TestTracker", sessions[0].ClientName)
	require.Equal(t, 1, sessions[0].Samples)
	require.False(t, sessions[0].FinishedAt.IsZero())

	require.Eventually(t, func() bool { return len(srv.ActiveSessions()) == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestStreamServer_SkipsUnknownType(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	srv := NewStreamServer("Server", newTestStream, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, "127.0.0.1:0")
	}()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)

	_, err = ReadEnvelope(r)
	require.NoError(t, err)
	require.NoError(t, WriteEnvelope(conn, &Envelope{Type: TypeAnswer, Name: "TestTracker"}))

	var frameEnv *Envelope
	for frameEnv == nil {
		env, err := ReadEnvelope(r)
		require.NoError(t, err)
		if env.Type != TypeFrame {
			continue
		}
		_, err = ReadFrameData(r, env)
		require.NoError(t, err)
		frameEnv = env
	}

	go func() { _, _ = io.Copy(io.Discard, r) }()

	// Мусорный конверт посреди сессии пропускается, координаты после него засчитываются.
	require.NoError(t, WriteEnvelope(conn, &Envelope{Type: "nonsense"}))
	require.NoError(t, WriteEnvelope(conn, &Envelope{Type: TypeCoords, X: 0, Y: 0, Seq: frameEnv.Seq}))

	require.Eventually(t, func() bool {
		sessions := srv.ActiveSessions()
		return len(sessions) == 1 && sessions[0].Samples == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	cancel()
	require.NoError(t, <-done)
}

func TestStreamServer_RejectsBadHandshake(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	srv := NewStreamServer("Server", newTestStream, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, "127.0.0.1:0")
	}()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)

	_, err = ReadEnvelope(r)
	require.NoError(t, err)

	// Вместо answer шлём мусорный тип: сервер должен закрыть соединение.
	require.NoError(t, WriteEnvelope(conn, &Envelope{Type: "nonsense"}))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _ = io.Copy(io.Discard, r)

	sessions, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, sessions)

	cancel()
	require.NoError(t, <-done)
}
