package services

import (
	"sort"
	"strings"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/shopspring/decimal"
)

// ParseAmount reads a stored amount. Anything unparsable or not positive counts as zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero
	}
	return d
}

// Sum adds the payment amounts of records.
func Sum(records []*models.Client) decimal.Decimal {
	total := decimal.Zero
	for _, c := range records {
		total = total.Add(ParseAmount(c.PaymentAmount))
	}
	return total
}

// Totals splits a bucket's sum into what is still owed and what was collected.
type Totals struct {
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Collected   decimal.Decimal `json:"collected"`
}

func ComputeTotals(records []*models.Client) Totals {
	t := Totals{Count: len(records), Total: decimal.Zero, Outstanding: decimal.Zero, Collected: decimal.Zero}
	for _, c := range records {
		amount := ParseAmount(c.PaymentAmount)
		t.Total = t.Total.Add(amount)
		if c.Status == models.StatusPaid {
			t.Collected = t.Collected.Add(amount)
		} else {
			t.Outstanding = t.Outstanding.Add(amount)
		}
	}
	return t
}

// CurrentDebt is the amount owed by every unpaid client.
func CurrentDebt(records []*models.Client) decimal.Decimal {
	total := decimal.Zero
	for _, c := range records {
		if c.Status != models.StatusPaid {
			total = total.Add(ParseAmount(c.PaymentAmount))
		}
	}
	return total
}

// RecipientTotal is the transfer sum received by one person.
type RecipientTotal struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ByRecipient groups transfer payments by recipient, largest first.
func ByRecipient(records []*models.Client) []RecipientTotal {
	sums := make(map[string]decimal.Decimal)
	for _, c := range records {
		if c.PaymentMethod != models.PaymentTransfer || c.TransferTo == "" {
			continue
		}
		cur, ok := sums[c.TransferTo]
		if !ok {
			cur = decimal.Zero
		}
		sums[c.TransferTo] = cur.Add(ParseAmount(c.PaymentAmount))
	}

	out := make([]RecipientTotal, 0, len(sums))
	for name, amount := range sums {
		out = append(out, RecipientTotal{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// HistoryDay is the payment history of one calendar day.
type HistoryDay struct {
	Date        string           `json:"date"`
	Clients     []*models.Client `json:"clients"`
	Profit      decimal.Decimal  `json:"profit"`
	ByRecipient []RecipientTotal `json:"byRecipient"`
}

// HistoryDates lists the days with payments, newest first.
func HistoryDates(records []*models.Client, loc *time.Location) []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, c := range records {
		if !InHistory(c) {
			continue
		}
		d := HistoryDate(c, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// BuildHistoryDay collects the paid records of date and their totals.
func BuildHistoryDay(records []*models.Client, date string, loc *time.Location) HistoryDay {
	day := HistoryDay{Date: date, Clients: []*models.Client{}}
	for _, c := range records {
		if InHistory(c) && HistoryDate(c, loc) == date {
			day.Clients = append(day.Clients, c)
		}
	}
	sort.SliceStable(day.Clients, func(i, j int) bool { return day.Clients[i].PaidAt.Before(*day.Clients[j].PaidAt) })
	day.Profit = Sum(day.Clients)
	day.ByRecipient = ByRecipient(day.Clients)
	return day
}

// DailyProfit summarizes the clients created on now's day: everything they owed and
// what was paid back.
func DailyProfit(records []*models.Client, now time.Time) models.ProfitSnapshot {
	snap := models.ProfitSnapshot{Date: now.Format(DateLayout), Profit: decimal.Zero, Debt: decimal.Zero}
	for _, c := range records {
		if !createdToday(c, now) {
			continue
		}
		amount := ParseAmount(c.PaymentAmount)
		if c.Status == models.StatusPaid {
			snap.Profit = snap.Profit.Add(amount)
		}
		snap.Debt = snap.Debt.Add(amount)
	}
	return snap
}
