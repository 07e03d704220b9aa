package models

// ClientStatus is the current handling state of a client record.
type ClientStatus string

const (
	StatusPending     ClientStatus = "pending"
	StatusPaid        ClientStatus = "paid"
	StatusNoAnswer    ClientStatus = "no_answer"
	StatusRescheduled ClientStatus = "rescheduled"
	StatusUncertain   ClientStatus = "uncertain"
)

// Statuses lists every status in display order.
var Statuses = []ClientStatus{StatusPending, StatusPaid, StatusNoAnswer, StatusRescheduled, StatusUncertain}

// Valid reports whether s is one of the known statuses.
func (s ClientStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the status caption shown on client cards.
func (s ClientStatus) Label() string {
	switch s {
	case StatusPaid:
		return "Оплачено"
	case StatusNoAnswer:
		return "Не отвечает"
	case StatusRescheduled:
		return "Перенос"
	case StatusUncertain:
		return "Под вопросом"
	default:
		return "В ожидании"
	}
}

// PaymentMethod defines how a client paid
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTransfer
}

// Role defines the access level of a signed-in user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Bucket names one of the client views.
type Bucket string

const (
	BucketToday   Bucket = "today"
	BucketOverdue Bucket = "overdue"
	BucketHistory Bucket = "history"
)
