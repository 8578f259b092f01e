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

// PriceHandler handles the /price command: an on-demand price check for any
// Steam App ID, watched or not. It is a pure read-through to GG.deals and
// never touches stored baselines, so a manual check cannot affect the next
// poll cycle's drop detection.
type PriceHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(svc *service.Service, logger *logrus.Logger) *PriceHandler {
	return &PriceHandler{svc: svc, logger: logger}
}

// Handle processes the /price command.
func (h *PriceHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return reply(bot, message.Chat.ID,
			"❌ Please provide a Steam App ID.\nUsage: `/price 1245620`")
	}
	appID := args[0]

	quote, err := h.svc.Lookup(context.Background(), appID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrGameNotFound):
			return reply(bot, message.Chat.ID,
				fmt.Sprintf("❌ Steam App ID *%s* was not found on GG.deals.", appID))
		case errors.Is(err, models.ErrFetchFailed):
			return reply(bot, message.Chat.ID,
				"⚠️ Could not reach GG.deals right now. Please try again later.")
		default:
			return fmt.Errorf("price lookup %s: %w", appID, err)
		}
	}

	text := fmt.Sprintf("💰 *%s*\n\n"+
		"Current retail: *%s*\n"+
		"Current keyshops: *%s*\n"+
		"Historical low (retail): %s\n"+
		"Historical low (keyshops): %s\n\n"+
		"[View on GG.deals](%s)",
		quote.Title,
		models.PriceString(quote.Retail, quote.Currency),
		models.PriceString(quote.Keyshops, quote.Currency),
		models.PriceString(quote.HistoricalRetail, quote.Currency),
		models.PriceString(quote.HistoricalKeyshops, quote.Currency),
		quote.URL)

	if err := reply(bot, message.Chat.ID, text); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"app_id":  appID,
	}).Info("Sent price lookup")

	return nil
}
