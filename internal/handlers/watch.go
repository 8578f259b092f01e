package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"dealbot/internal/models"
	"dealbot/internal/service"
)

// ---------------------------------------------------------------------------
// WatchHandler – /watch <steam_app_id>
// ---------------------------------------------------------------------------

// WatchHandler handles the /watch command to add a game to the watchlist.
// The current price is fetched immediately so the next poll cycle has a
// baseline to compare against.
type WatchHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(svc *service.Service, logger *logrus.Logger) *WatchHandler {
	return &WatchHandler{svc: svc, logger: logger}
}

// Handle processes the /watch command.
func (h *WatchHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return reply(bot, message.Chat.ID,
			"❌ Please provide a Steam App ID.\n"+
				"Usage: `/watch 1245620`\n\n"+
				"_Find the App ID in the game's Steam store URL._")
	}
	appID := args[0]

	item, err := h.svc.Watch(context.Background(), appID, displayName(message.From))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyWatched):
			return reply(bot, message.Chat.ID,
				fmt.Sprintf("🎮 Steam App ID *%s* is already on the watchlist.", appID))
		case errors.Is(err, models.ErrGameNotFound):
			return reply(bot, message.Chat.ID,
				fmt.Sprintf("❌ Steam App ID *%s* was not found on GG.deals.", appID))
		default:
			return fmt.Errorf("watch %s: %w", appID, err)
		}
	}

	text := fmt.Sprintf("✅ *Now watching: %s*\n\n"+
		"Retail price: *%s*\n"+
		"Keyshops price: *%s*\n"+
		"Historical low (retail): %s\n\n"+
		"[View on GG.deals](%s)",
		item.Name,
		models.PriceString(item.LastRetail, item.Currency),
		models.PriceString(item.LastKeyshops, item.Currency),
		models.PriceString(item.HistoricalRetail, item.Currency),
		item.URL)

	if item.LastRetail == nil && item.LastKeyshops == nil {
		text += "\n\n_No price yet; the next check will fill it in._"
	}

	if err := reply(bot, message.Chat.ID, text); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"app_id":  appID,
	}).Info("Game watched")

	return nil
}

// ---------------------------------------------------------------------------
// UnwatchHandler – /unwatch <steam_app_id>
// ---------------------------------------------------------------------------

// UnwatchHandler handles the /unwatch command.
type UnwatchHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewUnwatchHandler creates a new UnwatchHandler.
func NewUnwatchHandler(svc *service.Service, logger *logrus.Logger) *UnwatchHandler {
	return &UnwatchHandler{svc: svc, logger: logger}
}

// Handle processes the /unwatch command.
func (h *UnwatchHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return reply(bot, message.Chat.ID,
			"❌ Please provide a Steam App ID.\nUsage: `/unwatch 1245620`")
	}
	appID := args[0]

	item, err := h.svc.Unwatch(appID)
	if err != nil {
		if errors.Is(err, models.ErrNotWatched) {
			return reply(bot, message.Chat.ID,
				fmt.Sprintf("❌ Steam App ID *%s* is not on the watchlist.", appID))
		}
		return fmt.Errorf("unwatch %s: %w", appID, err)
	}

	if err := reply(bot, message.Chat.ID,
		fmt.Sprintf("🗑️ *%s* removed from the watchlist.", item.Name)); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"app_id":  appID,
	}).Info("Game unwatched")

	return nil
}

// reply sends a Markdown message to the chat.
func reply(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// displayName picks the best available name for attribution.
func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return user.FirstName
}
