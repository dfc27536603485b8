// Package notify delivers reminder messages to users over Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/terraincognita07/cyclesense/internal/logging"
	"go.uber.org/zap"
)

var ErrInvalidChatID = errors.New("invalid telegram chat id")

type TelegramOptions struct {
	// APIEndpoint overrides tgbotapi.APIEndpoint, mostly for tests.
	APIEndpoint    string
	HTTPClient     *http.Client
	MaxRetries     int
	RetryDelayBase time.Duration
	Logger         *zap.Logger
}

type TelegramNotifier struct {
	bot            *tgbotapi.BotAPI
	maxRetries     int
	retryDelayBase time.Duration
	logger         *zap.Logger
}

func NewTelegramNotifier(botToken string, options TelegramOptions) (*TelegramNotifier, error) {
	if strings.TrimSpace(botToken) == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if options.APIEndpoint == "" {
		options.APIEndpoint = tgbotapi.APIEndpoint
	}
	if options.HTTPClient == nil {
		options.HTTPClient = &http.Client{Timeout: 8 * time.Second}
	}
	if options.MaxRetries <= 0 {
		options.MaxRetries = 3
	}
	if options.RetryDelayBase <= 0 {
		options.RetryDelayBase = time.Second
	}

	bot, err := tgbotapi.NewBotAPIWithClient(botToken, options.APIEndpoint, options.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:            bot,
		maxRetries:     options.MaxRetries,
		retryDelayBase: options.RetryDelayBase,
		logger:         logging.OrNop(options.Logger).Named("telegram"),
	}, nil
}

// Notify sends a plain-text message, retrying with linear backoff.
func (notifier *TelegramNotifier) Notify(ctx context.Context, chatID string, message string) error {
	parsedChatID, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidChatID, chatID)
	}

	outgoing := tgbotapi.NewMessage(parsedChatID, message)
	outgoing.DisableWebPagePreview = true

	var lastErr error
	for attempt := 1; attempt <= notifier.maxRetries; attempt++ {
		_, lastErr = notifier.bot.Send(outgoing)
		if lastErr == nil {
			return nil
		}
		notifier.logger.Warn("telegram send failed",
			zap.Int("attempt", attempt),
			zap.Int64("chat_id", parsedChatID),
			zap.Error(lastErr),
		)
		if attempt == notifier.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(notifier.retryDelayBase * time.Duration(attempt)):
		}
	}

	return fmt.Errorf("failed to send message after %d attempts: %w", notifier.maxRetries, lastErr)
}
