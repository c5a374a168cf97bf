// Package notify announces new bookings to the staff Telegram chat.
package notify

import (
	"context"
	"fmt"
	"strings"

	"storecrew/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier posts a summary of each new booking to one chat.
// Delivery is best effort: a send failure is logged and the intake flow
// continues.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier ready")
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) BookingCreated(ctx context.Context, booking *models.Booking) {
	msg := tgbotapi.NewMessage(n.chatID, formatBookingMessage(booking))
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to send telegram notification")
	}
}

func formatBookingMessage(b *models.Booking) string {
	var sb strings.Builder
	sb.WriteString("🆕 Новая заявка #")
	sb.WriteString(fmt.Sprintf("%d", b.ID))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("👤 %s\n", b.Name))
	sb.WriteString(fmt.Sprintf("📞 %s\n", b.Phone))
	if b.Email != "" {
		sb.WriteString(fmt.Sprintf("✉️ %s\n", b.Email))
	}
	sb.WriteString(fmt.Sprintf("🔧 %s\n", b.ServiceType))
	sb.WriteString(fmt.Sprintf("📍 %s\n", b.Location))
	if b.PreferredDate != "" {
		sb.WriteString(fmt.Sprintf("📅 %s\n", b.PreferredDate))
	}
	sb.WriteString(fmt.Sprintf("💰 %d %s\n", b.Estimate.Total, b.Estimate.Currency))
	if b.Message != "" {
		sb.WriteString(fmt.Sprintf("\n💬 %s\n", b.Message))
	}
	return sb.String()
}
