package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
)

// Stream — параметры симуляции и видеопотока
type Stream struct {
	Width         int `envconfig:"STREAM_WIDTH"`
	Height        int `envconfig:"STREAM_HEIGHT"`
	FPS           int `envconfig:"STREAM_FPS"`
	BallRadius    int `envconfig:"BALL_RADIUS"`
	BallVelocityX int `envconfig:"BALL_VELOCITY_X"`
	BallVelocityY int `envconfig:"BALL_VELOCITY_Y"`
}

// Config — конфигурация сервера и трекера
type Config struct {
	Name           string `envconfig:"NAME"`
	Port           int    `envconfig:"PORT"`
	StatsAddr      string `envconfig:"STATS_ADDR"`
	DBPath         string `envconfig:"DB_PATH"`
	SendIntervalMS int    `envconfig:"SEND_INTERVAL_MS"`
	TelegramToken  string `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `envconfig:"TELEGRAM_CHAT_ID"`

	Stream Stream
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Name:           "Server",
		Port:           9000,
		DBPath:         "~/.ball-tracker/sessions.db",
		SendIntervalMS: 100,
		Stream: Stream{
			Width:         640,
			Height:        480,
			FPS:           30,
			BallRadius:    30,
			BallVelocityX: 2,
			BallVelocityY: 2,
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем TOML-файл
// (если задан), затем переменные окружения
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expand config path: %w", err)
		}
		if _, err := toml.DecodeFile(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate проверяет, что поток вообще возможно сгенерировать
func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Stream.Width <= 0 || c.Stream.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", c.Stream.Width, c.Stream.Height)
	}
	if c.Stream.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.Stream.FPS)
	}
	if c.Stream.BallRadius <= 0 {
		return fmt.Errorf("invalid ball radius %d", c.Stream.BallRadius)
	}
	if c.Stream.BallRadius*2 >= c.Stream.Width || c.Stream.BallRadius*2 >= c.Stream.Height {
		return fmt.Errorf("ball radius %d does not fit into frame %dx%d", c.Stream.BallRadius, c.Stream.Width, c.Stream.Height)
	}
	return nil
}

// Addr возвращает адрес прослушивания сервера
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SendInterval возвращает период отправки координат клиентом
func (c *Config) SendInterval() time.Duration {
	return time.Duration(c.SendIntervalMS) * time.Millisecond
}
