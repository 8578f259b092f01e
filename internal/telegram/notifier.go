package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dealbot/internal/models"
)

// DropNotifier renders price-drop alerts into the configured alert channel.
// Its NotifyDrop method matches service.DropCallback, so the poll scheduler
// can call it directly.
type DropNotifier struct {
	bot    *Bot
	chatID int64
	logger *logrus.Logger
}

// NewDropNotifier creates a notifier that announces drops in chatID.
func NewDropNotifier(bot *Bot, chatID int64, logger *logrus.Logger) *DropNotifier {
	return &DropNotifier{bot: bot, chatID: chatID, logger: logger}
}

// NotifyDrop announces a detected price drop for one watched game.
func (n *DropNotifier) NotifyDrop(item *models.WatchedItem, report *models.DropReport) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔔 *Price Drop: %s*\n", item.Name))

	if report.RetailDrop != nil {
		sb.WriteString(fmt.Sprintf("🏷️ Retail: %s → *%s*\n",
			models.PriceString(report.OldRetail, ""),
			models.PriceString(item.LastRetail, item.Currency)))
	}
	if report.KeyshopsDrop != nil {
		sb.WriteString(fmt.Sprintf("🔑 Keyshops: %s → *%s*\n",
			models.PriceString(report.OldKeyshops, ""),
			models.PriceString(item.LastKeyshops, item.Currency)))
	}

	if item.HistoricalRetail != nil {
		sb.WriteString(fmt.Sprintf("\nHistorical low (retail): %s\n",
			models.PriceString(item.HistoricalRetail, item.Currency)))
	}
	if item.URL != "" {
		sb.WriteString(fmt.Sprintf("\n[View on GG.deals](%s)", item.URL))
	}

	if err := n.bot.SendMessage(n.chatID, sb.String()); err != nil {
		n.logger.WithFields(logrus.Fields{
			"app_id":  item.AppID,
			"chat_id": n.chatID,
			"error":   err,
		}).Error("Failed to send price drop alert")
		return
	}

	n.logger.WithFields(logrus.Fields{
		"app_id": item.AppID,
		"name":   item.Name,
	}).Info("Price drop alert sent")
}
