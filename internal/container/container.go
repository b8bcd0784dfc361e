package container

import (
	"ball-tracker/config"
	"ball-tracker/internal/api"
	app "ball-tracker/internal/application"
	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
	"ball-tracker/internal/infrastructure/notify"
	"ball-tracker/internal/infrastructure/storage"
	"ball-tracker/internal/infrastructure/vision"
)

// Container собирает зависимости серверной части
type Container struct {
	Config *config.Config
	Server *api.StreamServer
	Stats  *api.StatsServer

	repo *storage.SQLiteSessionRepository
}

// NewServer создаёт контейнер сервера: хранилище, отрисовщик, уведомитель
func NewServer(cfg *config.Config) (*Container, error) {
	repo, err := storage.NewSQLiteSessionRepository(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var notifier port.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		n, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
		notifier = n
	}

	renderer := vision.NewGoCVRenderer()

	// Каждое подключение получает собственный мяч в центре кадра.
	newStream := func() *app.StreamService {
		ball := entity.NewBall(
			cfg.Stream.Width/2,
			cfg.Stream.Height/2,
			cfg.Stream.BallVelocityX,
			cfg.Stream.BallVelocityY,
			cfg.Stream.BallRadius,
		)
		return app.NewStreamService(renderer, ball, cfg.Stream.Width, cfg.Stream.Height, cfg.Stream.FPS)
	}

	server := api.NewStreamServer(cfg.Name, newStream, repo, notifier)
	stats := api.NewStatsServer(server, repo)

	return &Container{
		Config: cfg,
		Server: server,
		Stats:  stats,
		repo:   repo,
	}, nil
}

// Close освобождает ресурсы контейнера
func (c *Container) Close() error {
	return c.repo.Close()
}
