package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender is the part of *bot.Bot used for notifications.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier messages specialists that linked a Telegram chat.
type TelegramNotifier struct {
	bot         MessageSender
	specialists SpecialistDirectory
	logger      *zap.Logger
}

func NewTelegramNotifier(b MessageSender, specialists SpecialistDirectory, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:         b,
		specialists: specialists,
		logger:      logger,
	}
}

// NewBot creates a send-only Telegram client.
func NewBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, event Event) error {
	specialists, err := n.specialists.ListSpecialistsByUniversity(ctx, event.UniversityID())
	if err != nil {
		return fmt.Errorf("get specialists: %w", err)
	}

	text := fmt.Sprintf("%s\n\n%s", event.Subject(), event.Body())

	var firstErr error
	sent := 0
	for _, sp := range specialists {
		if sp.TelegramChatID == nil {
			continue
		}

		_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: *sp.TelegramChatID,
			Text:   text,
		})
		if err != nil {
			n.logger.Warn("Failed to send telegram notification",
				zap.Int64("specialist_id", sp.ID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("send telegram message: %w", err)
			}
			continue
		}
		sent++
	}

	if sent > 0 {
		n.logger.Info("Telegram notifications sent",
			zap.String("kind", string(event.Kind)),
			zap.Int64("reservation_id", event.Reservation.ID),
			zap.Int("recipients", sent),
		)
	}

	return firstErr
}
