package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier delivers the end-of-day report.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TelegramNotifier posts reports to one chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot init: %w", err)
	}
	bot.Debug = false
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// LogNotifier writes reports to the log when no bot is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, text string) error {
	l.logger.Info("daily report", zap.String("text", text))
	return nil
}

// NewNotifier picks Telegram when a token and chat are set and falls back to the log.
func NewNotifier(token string, chatID int64, logger *zap.Logger) Notifier {
	if token == "" || chatID == 0 {
		return NewLogNotifier(logger)
	}
	n, err := NewTelegramNotifier(token, chatID)
	if err != nil {
		if logger != nil {
			logger.Warn("telegram disabled, reports go to the log", zap.Error(err))
		}
		return NewLogNotifier(logger)
	}
	return n
}

// DailyReport is the end-of-day summary sent to the owners.
type DailyReport struct {
	Snapshot    models.ProfitSnapshot
	Today       Totals
	PaidToday   Totals
	ByRecipient []RecipientTotal
	CurrentDebt decimal.Decimal
}

func BuildDailyReport(records []*models.Client, now time.Time) DailyReport {
	var paid []*models.Client
	for _, c := range records {
		if paidToday(c, now) {
			paid = append(paid, c)
		}
	}
	return DailyReport{
		Snapshot:    DailyProfit(records, now),
		Today:       ComputeTotals(FilterBucket(records, Query{Bucket: models.BucketToday}, now)),
		PaidToday:   ComputeTotals(paid),
		ByRecipient: ByRecipient(paid),
		CurrentDebt: CurrentDebt(records),
	}
}

// FormatDailyReport renders the report as Telegram Markdown. Recipient names are
// free text and get escaped.
func FormatDailyReport(r DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Отчёт за %s*\n\n", r.Snapshot.Date)
	fmt.Fprintf(&b, "Клиентов за день: %d\n", r.Today.Count)
	fmt.Fprintf(&b, "Было в долге: %s\n", r.Snapshot.Debt.String())
	fmt.Fprintf(&b, "Вернули: %s\n", r.Snapshot.Profit.String())
	fmt.Fprintf(&b, "Осталось: %s\n", r.Snapshot.Remaining().String())
	fmt.Fprintf(&b, "\nОплат сегодня: %d на %s\n", r.PaidToday.Count, r.PaidToday.Total.String())
	for _, rt := range r.ByRecipient {
		fmt.Fprintf(&b, "  → %s: %s\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, rt.Name), rt.Amount.String())
	}
	fmt.Fprintf(&b, "\nОбщий долг: %s", r.CurrentDebt.String())
	return b.String()
}
