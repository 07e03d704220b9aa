package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaySummary is the cached profit of one payment-history day.
type DaySummary struct {
	Date   string          `json:"date"`
	Profit decimal.Decimal `json:"profit"`
}

// ProfitSnapshot records what was owed and returned by clients created on Date.
type ProfitSnapshot struct {
	Date   string          `json:"date"`
	Profit decimal.Decimal `json:"profit"`
	Debt   decimal.Decimal `json:"debt"`
}

// Remaining is the part of the day's debt that was not returned.
func (s ProfitSnapshot) Remaining() decimal.Decimal {
	return s.Debt.Sub(s.Profit)
}

// DeletionLog is an audit entry written when a client record is removed.
type DeletionLog struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	DeletedBy string    `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
	Client    *Client   `json:"client,omitempty"`
}
