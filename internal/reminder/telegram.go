package reminder

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// TelegramNotifier delivers reminders over a Telegram bot. Sends are rate
// limited to stay under the Bot API per-second ceiling.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter

	mu    sync.RWMutex
	chats map[string]int64
}

// NewTelegramNotifier creates a notifier from a bot token. ratePerSecond
// and burst bound the send rate; zero values fall back to 20/s burst 30.
func NewTelegramNotifier(token string, ratePerSecond float64, burst int) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 20
	}
	if burst <= 0 {
		burst = 30
	}
	return &TelegramNotifier{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		chats:   make(map[string]int64),
	}, nil
}

// RegisterChat maps a user id to the Telegram chat reminders go to.
func (n *TelegramNotifier) RegisterChat(userID string, chatID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chats[userID] = chatID
}

// Notify sends the text to the user's registered chat. Users without a
// registered chat are skipped silently; a user id that parses as a number
// is used as the chat id directly.
func (n *TelegramNotifier) Notify(ctx context.Context, userID, text string) error {
	chatID, ok := n.chatFor(userID)
	if !ok {
		return nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) chatFor(userID string) (int64, bool) {
	n.mu.RLock()
	chatID, ok := n.chats[userID]
	n.mu.RUnlock()
	if ok {
		return chatID, true
	}
	if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
		return id, true
	}
	return 0, false
}
