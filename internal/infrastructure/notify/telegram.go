package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
)

// TelegramNotifier шлёт итоги сессии в Telegram-чат
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier создаёт уведомитель с токеном бота и ID чата
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &TelegramNotifier{
		api:    api,
		chatID: chatID,
	}, nil
}

// NotifySessionFinished отправляет итоговую статистику сессии в чат
func (n *TelegramNotifier) NotifySessionFinished(ctx context.Context, session *entity.TrackingSession) error {
	_ = ctx

	text := fmt.Sprintf(
		"Tracking session %s finished\nClient: %s\nDuration: %s\nSamples: %d\nMean error: %.2f px\nMax error: %.2f px\nRMS error: %.2f px",
		session.ID,
		session.ClientName,
		session.Duration().Round(time.Second),
		session.Samples,
		session.MeanError,
		session.MaxError,
		session.RMSError,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// Проверка реализации интерфейса
var _ port.Notifier = (*TelegramNotifier)(nil)
