package services

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/go-playground/validator/v10"
)

// ErrDuplicateClient rejects a second client with the same phone on the same day.
var ErrDuplicateClient = errors.New("client with this phone already added for the selected date")

// FieldErrors maps a form field (json name) to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsOnly.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		return ParseAmount(fl.Field().String()).IsPositive()
	})
	return v
}

// messages holds the inline text per field and failed tag; "" is the field fallback.
var messages = map[string]map[string]string{
	"fullName":       {"": "Введите имя клиента"},
	"phone":          {"required": "Введите номер клиента", "": "Введите только цифры"},
	"guarantorPhone": {"": "Введите только цифры"},
	"paymentAmount":  {"": "Введите корректную сумму"},
	"timing":         {"": "Выберите срок"},
	"paymentMethod":  {"": "Выберите способ оплаты"},
	"transferTo":     {"": "Выберите получателя"},
	"date":           {"": "Укажите дату в формате ГГГГ-ММ-ДД"},
}

func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msgs := messages[field]
		if m, ok := msgs[fe.Tag()]; ok {
			out[field] = m
		} else if m, ok := msgs[""]; ok {
			out[field] = m
		} else {
			out[field] = "invalid value"
		}
	}
	return out
}

// NormalizePhone keeps only the digits and restores the leading 8 dropped by
// callers who start with 9.
func NormalizePhone(s string) string {
	s = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if strings.HasPrefix(s, "9") {
		s = "8" + s
	}
	return s
}

// Timing selects when a new client is due; overdue timings backdate createdAt.
type Timing string

const (
	TimingToday     Timing = "today"
	TimingOverdue   Timing = "overdue"
	TimingOverdue1M Timing = "overdue_1m"
	TimingOverdue2M Timing = "overdue_2m"
)

// CreatedAt returns the creation timestamp to store for a client added at now.
func (t Timing) CreatedAtFor(now time.Time) time.Time {
	switch t {
	case TimingOverdue:
		return now.AddDate(0, 0, -1)
	case TimingOverdue1M:
		return now.AddDate(0, -1, 0)
	case TimingOverdue2M:
		return now.AddDate(0, -2, 0)
	default:
		return now
	}
}

// NewClientForm is the client creation form.
type NewClientForm struct {
	FullName       string `json:"fullName" validate:"required"`
	Phone          string `json:"phone" validate:"required,digits"`
	GuarantorPhone string `json:"guarantorPhone" validate:"omitempty,digits"`
	PaymentAmount  string `json:"paymentAmount" validate:"positive_amount"`
	Timing         Timing `json:"timing" validate:"omitempty,oneof=today overdue overdue_1m overdue_2m"`
}

func (f *NewClientForm) normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Phone = NormalizePhone(f.Phone)
	f.GuarantorPhone = NormalizePhone(f.GuarantorPhone)
	f.PaymentAmount = strings.TrimSpace(f.PaymentAmount)
	if f.Timing == "" {
		f.Timing = TimingToday
	}
}

// Validate normalizes the form and returns FieldErrors when it cannot be submitted.
func (f *NewClientForm) Validate() error {
	f.normalize()
	return validateForm(f)
}

// Record builds the pending client stored for a validated form.
func (f *NewClientForm) Record(now time.Time) *models.Client {
	return &models.Client{
		FullName:       f.FullName,
		Phone:          f.Phone,
		GuarantorPhone: f.GuarantorPhone,
		PaymentAmount:  f.PaymentAmount,
		Status:         models.StatusPending,
		CreatedAt:      f.Timing.CreatedAtFor(now),
	}
}

// IsDuplicate reports whether existing already holds phone created on the day of createdAt.
func IsDuplicate(existing []*models.Client, phone string, createdAt time.Time) bool {
	for _, c := range existing {
		if c.Phone == phone && !c.CreatedAt.IsZero() && SameDay(c.CreatedAt, createdAt) {
			return true
		}
	}
	return false
}

// ManualPaymentForm backfills a payment on the history page.
type ManualPaymentForm struct {
	FullName      string               `json:"fullName" validate:"required"`
	Phone         string               `json:"phone" validate:"omitempty,digits"`
	PaymentAmount string               `json:"paymentAmount" validate:"positive_amount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash transfer"`
	TransferTo    string               `json:"transferTo" validate:"required_if=PaymentMethod transfer"`
	Date          string               `json:"date" validate:"required,datetime=2006-01-02"`
}

func (f *ManualPaymentForm) Validate() error {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Phone = NormalizePhone(f.Phone)
	f.PaymentAmount = strings.TrimSpace(f.PaymentAmount)
	f.TransferTo = strings.TrimSpace(f.TransferTo)
	if f.PaymentMethod == "" {
		f.PaymentMethod = models.PaymentCash
	}
	return validateForm(f)
}

// Record builds the paid client for a validated form, paid at noon UTC of Date.
func (f *ManualPaymentForm) Record() (*models.Client, error) {
	day, err := time.Parse(DateLayout, f.Date)
	if err != nil {
		return nil, err
	}
	paidAt := day.Add(12 * time.Hour)
	c := &models.Client{
		FullName:      f.FullName,
		Phone:         f.Phone,
		PaymentAmount: f.PaymentAmount,
		Status:        models.StatusPaid,
		PaymentMethod: f.PaymentMethod,
		CreatedAt:     paidAt,
		PaidAt:        &paidAt,
	}
	if f.PaymentMethod == models.PaymentTransfer {
		c.TransferTo = f.TransferTo
	}
	return c, nil
}
