package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
)

var (
	ErrUnknownStatus   = errors.New("unknown status")
	ErrCommentRequired = errors.New("comment is required for this status")
	ErrInvalidPayment  = errors.New("invalid payment")
)

// StatusChange is a requested transition of one client record.
type StatusChange struct {
	Status  models.ClientStatus
	Comment string
	Extra   models.Patch
}

// BuildStatusPatch maps a transition onto the field patch sent to the store.
//
// Any status may follow any other. Leaving paid always drops the payment details,
// so paid_at is set exactly when the status is paid.
func BuildStatusPatch(rec *models.Client, change StatusChange, actor string, now time.Time) (models.Patch, error) {
	if !change.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, change.Status)
	}

	comment := strings.TrimSpace(change.Comment)
	if comment == "" && (change.Status == models.StatusRescheduled || change.Status == models.StatusUncertain) {
		return nil, ErrCommentRequired
	}

	patch := models.Patch{models.FieldStatus: change.Status}
	if comment != "" {
		patch[models.FieldComment] = comment
	}

	if change.Status == models.StatusPaid {
		patch[models.FieldPaidAt] = now
	} else if rec != nil && (rec.Status == models.StatusPaid || rec.PaidAt != nil) {
		for f, v := range resetPayment(rec) {
			patch[f] = v
		}
	}

	patch.Merge(change.Extra)

	if change.Status != models.StatusPaid {
		patch[models.FieldPaidAt] = nil
	} else if t, err := patch.TimeValue(models.FieldPaidAt); err != nil || t == nil {
		patch[models.FieldPaidAt] = now
	}
	patch[models.FieldStatus] = change.Status

	if actor != "" {
		patch[models.FieldUpdatedBy] = actor
	}
	return patch, nil
}

// resetPayment clears what the paid transition recorded and restores the owed amount.
func resetPayment(rec *models.Client) models.Patch {
	p := models.Patch{
		models.FieldPaidAt:         nil,
		models.FieldPaymentMethod:  nil,
		models.FieldTransferTo:     nil,
		models.FieldOriginalAmount: nil,
	}
	if rec.OriginalAmount != "" {
		p[models.FieldPaymentAmount] = rec.OriginalAmount
	}
	return p
}

// Payment is what the collector enters when a client pays.
type Payment struct {
	Amount     string               `json:"amount"`
	Method     models.PaymentMethod `json:"method"`
	TransferTo string               `json:"transferTo"`
}

// PaymentExtra validates a payment and returns the extra fields of a paid transition.
func PaymentExtra(rec *models.Client, p Payment) (models.Patch, error) {
	if !p.Method.Valid() {
		return nil, fmt.Errorf("%w: choose cash or transfer", ErrInvalidPayment)
	}
	amount := strings.TrimSpace(p.Amount)
	if amount == "" {
		amount = rec.PaymentAmount
	}
	if !ParseAmount(amount).IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidPayment)
	}
	recipient := strings.TrimSpace(p.TransferTo)
	if p.Method == models.PaymentTransfer && recipient == "" {
		return nil, fmt.Errorf("%w: transfer recipient is required", ErrInvalidPayment)
	}

	original := rec.OriginalAmount
	if original == "" {
		original = rec.PaymentAmount
	}

	extra := models.Patch{
		models.FieldPaymentMethod:  p.Method,
		models.FieldPaymentAmount:  amount,
		models.FieldOriginalAmount: original,
		models.FieldTransferTo:     nil,
	}
	if p.Method == models.PaymentTransfer {
		extra[models.FieldTransferTo] = recipient
	}
	return extra, nil
}

// ApplyPatch returns a copy of rec with patch applied.
func ApplyPatch(rec *models.Client, patch models.Patch) (*models.Client, error) {
	next := rec.Clone()
	if err := next.Apply(patch); err != nil {
		return nil, err
	}
	return next, nil
}
