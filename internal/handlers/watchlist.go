package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"dealbot/internal/models"
	"dealbot/internal/service"
)

// WatchlistHandler handles the /watchlist command, listing all watched
// games with their last known prices.
type WatchlistHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(svc *service.Service, logger *logrus.Logger) *WatchlistHandler {
	return &WatchlistHandler{svc: svc, logger: logger}
}

// Handle processes the /watchlist command.
func (h *WatchlistHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	items := h.svc.Items()

	if len(items) == 0 {
		return reply(bot, message.Chat.ID,
			"📋 The watchlist is empty. Add games with `/watch <steam_app_id>`.")
	}

	var sb strings.Builder
	sb.WriteString("📋 *Watchlist*\n\n")

	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. *%s* (ID: %s)\n", i+1, item.Name, item.AppID))
		sb.WriteString(fmt.Sprintf("   Retail: *%s* | Keyshops: *%s*\n",
			models.PriceString(item.LastRetail, item.Currency),
			models.PriceString(item.LastKeyshops, item.Currency)))
		if item.URL != "" {
			sb.WriteString(fmt.Sprintf("   [View on GG.deals](%s)\n", item.URL))
		}
	}

	sb.WriteString(fmt.Sprintf("\n_%d game(s) watched_", len(items)))

	if err := reply(bot, message.Chat.ID, sb.String()); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   len(items),
	}).Info("Listed watchlist")

	return nil
}
