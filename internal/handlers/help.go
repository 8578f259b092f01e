package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	helpText := `🎮 *GG.deals Price Bot — Commands*

• /watch <steam\_app\_id> - Add a game to the watchlist. Find the App ID in the game's Steam store URL.
  Example: ` + "`/watch 1245620`" + `
• /unwatch <steam\_app\_id> - Remove a game from the watchlist
• /watchlist - Show all watched games and their last known prices
• /price <steam\_app\_id> - Check the current price without adding to the watchlist
• /help - Show this help message

_Prices are re-checked periodically; drops are announced in the alert channel._
_Powered by GG.deals • Data provided by gg.deals_`

	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := bot.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
