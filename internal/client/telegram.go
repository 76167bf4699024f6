package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/xcontext"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/puzpuzpuz/xsync"
)

// ChatMessageHandler consumes one inbound conversation message.
type ChatMessageHandler func(context.Context, model.ChatMessage)

type memberCountEntry struct {
	count     int
	fetchedAt time.Time
}

// TelegramGateway adapts telegram group chats to the conversation stream. It
// long-polls updates, enriches them with a cached member count, and posts
// quest announcements back into the chat.
type TelegramGateway struct {
	bot          *tgbotapi.BotAPI
	memberCounts *xsync.MapOf[string, memberCountEntry]
}

func NewTelegramGateway(botToken string) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}

	return &TelegramGateway{
		bot:          bot,
		memberCounts: xsync.NewMapOf[memberCountEntry](),
	}, nil
}

// Poll forwards group messages to the handler until ctx is done. A closed
// update channel is reopened after the configured reconnect delay.
func (g *TelegramGateway) Poll(ctx context.Context, handler ChatMessageHandler) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := g.bot.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			g.bot.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				delay := xcontext.Configs(ctx).Telegram.ReconnectDelay
				if delay <= 0 {
					delay = 5 * time.Second
				}

				xcontext.Logger(ctx).Warnf("Telegram update stream closed, reconnecting in %v", delay)
				time.Sleep(delay)
				updates = g.bot.GetUpdatesChan(updateConfig)
				continue
			}

			message := update.Message
			if message == nil || message.From == nil {
				continue
			}

			// Direct messages carry no conversation signal.
			if message.Chat.IsPrivate() {
				continue
			}

			handler(ctx, model.ChatMessage{
				ConversationID: strconv.FormatInt(message.Chat.ID, 10),
				SenderID:       strconv.FormatInt(message.From.ID, 10),
				Text:           message.Text,
				SentAt:         message.Time(),
				MemberCount:    g.memberCount(ctx, message.Chat.ID),
			})
		}
	}
}

// Announce implements Announcer by messaging the chat directly. Transient
// send failures are retried here so the engine stays fire-and-forget.
func (g *TelegramGateway) Announce(ctx context.Context, announcement model.Announcement) error {
	chatID, err := strconv.ParseInt(announcement.ConversationID, 10, 64)
	if err != nil {
		return fmt.Errorf("conversation %s is not a telegram chat: %w", announcement.ConversationID, err)
	}

	backoff := time.Second
	for attempt := 0; ; attempt++ {
		_, err = g.bot.Send(tgbotapi.NewMessage(chatID, announcement.Text))
		if err == nil {
			return nil
		}

		if attempt == 2 {
			return err
		}

		xcontext.Logger(ctx).Warnf("Cannot announce to chat %d, retrying in %v: %v", chatID, backoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (g *TelegramGateway) memberCount(ctx context.Context, chatID int64) int {
	key := strconv.FormatInt(chatID, 10)

	ttl := xcontext.Configs(ctx).Telegram.MemberCountTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	if entry, ok := g.memberCounts.Load(key); ok && time.Since(entry.fetchedAt) < ttl {
		return entry.count
	}

	count, err := g.bot.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot count members of chat %d: %v", chatID, err)

		// A stale count beats no count.
		if entry, ok := g.memberCounts.Load(key); ok {
			return entry.count
		}

		return 0
	}

	g.memberCounts.Store(key, memberCountEntry{count: count, fetchedAt: time.Now()})
	return count
}
