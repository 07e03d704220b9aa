package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger ties the store to the client views and is what the handlers talk to.
type Ledger struct {
	Store   database.Store
	Feed    *Feed
	Deleter *DeleteScheduler
	Loc     *time.Location
	Now     func() time.Time

	logger *zap.Logger
}

func NewLedger(store database.Store, feed *Feed, deleter *DeleteScheduler, loc *time.Location, logger *zap.Logger) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{Store: store, Feed: feed, Deleter: deleter, Loc: loc, Now: time.Now, logger: logger}
}

// Clock is the current time in the ledger's zone.
func (l *Ledger) Clock() time.Time {
	return l.Now().In(l.Loc)
}

// ClientView is a record with the markers its card shows.
type ClientView struct {
	*models.Client
	StatusLabel        string `json:"statusLabel"`
	MonthsElapsed      int    `json:"monthsElapsed"`
	DisappearsTomorrow bool   `json:"disappearsTomorrow"`
	RescheduledToday   bool   `json:"rescheduledToday"`
}

// BucketView is one filtered list and its totals.
type BucketView struct {
	Bucket models.Bucket `json:"bucket"`
	Status string        `json:"status"`
	Age    OverdueAge    `json:"age"`
	Items  []ClientView  `json:"items"`
	Totals Totals        `json:"totals"`
}

// View filters records the way the bucket pages do.
func View(records []*models.Client, q Query, now time.Time) BucketView {
	selected := FilterBucket(records, q, now)
	items := make([]ClientView, len(selected))
	for i, c := range selected {
		items[i] = ClientView{
			Client:           c,
			StatusLabel:      c.Status.Label(),
			MonthsElapsed:    MonthsElapsed(c.CreatedAt, now),
			RescheduledToday: RescheduledForToday(c, now),
		}
		if q.Bucket == models.BucketOverdue {
			items[i].DisappearsTomorrow = DisappearsTomorrow(c, now)
		}
	}
	return BucketView{Bucket: q.Bucket, Status: q.Status, Age: q.Age, Items: items, Totals: ComputeTotals(selected)}
}

func (l *Ledger) Bucket(ctx context.Context, q Query) (BucketView, error) {
	records, err := l.Store.ListClients(ctx)
	if err != nil {
		return BucketView{}, err
	}
	return View(records, q, l.Clock()), nil
}

// CreateClient validates the form, rejects a same-day duplicate phone and stores the record.
func (l *Ledger) CreateClient(ctx context.Context, form *NewClientForm, s *models.Session) (*models.Client, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	rec := form.Record(l.Clock())
	rec.UpdatedBy = s.Actor()

	existing, err := l.Store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	if IsDuplicate(existing, rec.Phone, rec.CreatedAt) {
		return nil, ErrDuplicateClient
	}
	if err := l.Store.CreateClient(ctx, rec); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	l.logger.Info("client created", zap.String("client_id", rec.ID), zap.String("by", rec.UpdatedBy))
	return rec, nil
}

// StatusRequest is the body of a status change; Payment is read for paid only.
type StatusRequest struct {
	Status  models.ClientStatus `json:"status"`
	Comment string              `json:"comment"`
	Payment *Payment            `json:"payment,omitempty"`
}

// ChangeStatus applies a transition and returns the updated record.
func (l *Ledger) ChangeStatus(ctx context.Context, id string, req StatusRequest, s *models.Session) (*models.Client, error) {
	rec, err := l.Store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	change := StatusChange{Status: req.Status, Comment: req.Comment}
	if req.Status == models.StatusPaid && req.Payment != nil {
		extra, err := PaymentExtra(rec, *req.Payment)
		if err != nil {
			return nil, err
		}
		change.Extra = extra
	}

	patch, err := BuildStatusPatch(rec, change, s.Actor(), l.Clock())
	if err != nil {
		return nil, err
	}
	if err := l.Store.UpdateClient(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("update client %s: %w", id, err)
	}
	return ApplyPatch(rec, patch)
}

// ScheduleDelete arms the undoable delete of id.
func (l *Ledger) ScheduleDelete(ctx context.Context, id string, s *models.Session) (time.Time, error) {
	return l.Deleter.Schedule(ctx, id, s.Actor())
}

func (l *Ledger) RestoreDelete(id string) bool {
	return l.Deleter.Cancel(id)
}

// HistoryView is the payment history page: known days and the selected one.
type HistoryView struct {
	Dates      []string   `json:"dates"`
	Day        HistoryDay `json:"day"`
	Recipients []string   `json:"recipients,omitempty"`
}

// History builds the day view for date, defaulting to the latest payment day,
// and caches a positive profit as that day's summary.
func (l *Ledger) History(ctx context.Context, date string) (HistoryView, error) {
	records, err := l.Store.ListClients(ctx)
	if err != nil {
		return HistoryView{}, err
	}
	dates := HistoryDates(records, l.Loc)
	if date == "" {
		if len(dates) > 0 {
			date = dates[0]
		} else {
			date = l.Clock().Format(DateLayout)
		}
	}

	day := BuildHistoryDay(records, date, l.Loc)
	if day.Profit.IsPositive() {
		if err := l.Store.SaveDaySummary(ctx, models.DaySummary{Date: date, Profit: day.Profit}); err != nil {
			l.logger.Warn("save day summary", zap.String("date", date), zap.Error(err))
		}
	}
	return HistoryView{Dates: dates, Day: day}, nil
}

// AddManualPayment stores a backfilled paid record.
func (l *Ledger) AddManualPayment(ctx context.Context, form *ManualPaymentForm, s *models.Session) (*models.Client, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	rec, err := form.Record()
	if err != nil {
		return nil, err
	}
	rec.UpdatedBy = s.Actor()
	if err := l.Store.CreateClient(ctx, rec); err != nil {
		return nil, fmt.Errorf("create manual payment: %w", err)
	}
	return rec, nil
}

// ProfileView is the account page with the profit overview.
type ProfileView struct {
	Email       string                  `json:"email"`
	Role        models.Role             `json:"role"`
	CurrentDebt decimal.Decimal         `json:"currentDebt"`
	Today       models.ProfitSnapshot   `json:"today"`
	History     []models.ProfitSnapshot `json:"history"`
}

// Profile computes today's profit snapshot; for admins it is also persisted.
func (l *Ledger) Profile(ctx context.Context, s *models.Session) (ProfileView, error) {
	records, err := l.Store.ListClients(ctx)
	if err != nil {
		return ProfileView{}, err
	}
	view := ProfileView{
		Email:       s.Email,
		Role:        s.Role,
		CurrentDebt: CurrentDebt(records),
		Today:       DailyProfit(records, l.Clock()),
		History:     []models.ProfitSnapshot{},
	}
	if !s.IsAdmin() {
		return view, nil
	}

	if err := l.Store.SaveProfitSnapshot(ctx, view.Today); err != nil {
		l.logger.Warn("save profit snapshot", zap.String("date", view.Today.Date), zap.Error(err))
	}
	history, err := l.Store.ListProfitSnapshots(ctx)
	if err != nil {
		return ProfileView{}, err
	}
	view.History = history
	return view, nil
}

func (l *Ledger) ClearProfitHistory(ctx context.Context) error {
	return l.Store.ClearProfitHistory(ctx)
}

func (l *Ledger) ExportBucket(ctx context.Context, w io.Writer, q Query) error {
	records, err := l.Store.ListClients(ctx)
	if err != nil {
		return err
	}
	return ExportClients(w, FilterBucket(records, q, l.Clock()), l.Loc)
}

func (l *Ledger) ExportProfitHistory(ctx context.Context, w io.Writer) error {
	history, err := l.Store.ListProfitSnapshots(ctx)
	if err != nil {
		return err
	}
	return ExportProfitHistory(w, history)
}
