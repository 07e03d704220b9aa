package services

import (
	"testing"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStatusPatchPaid(t *testing.T) {
	now := at(2024, 3, 10, 12, 0)
	rec := &models.Client{ID: "c1", Status: models.StatusPending, PaymentAmount: "5000"}

	patch, err := BuildStatusPatch(rec, StatusChange{Status: models.StatusPaid}, "ops@example.com", now)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPaid, patch[models.FieldStatus])
	assert.Equal(t, now, patch[models.FieldPaidAt])
	assert.Equal(t, "ops@example.com", patch[models.FieldUpdatedBy])
	assert.NotContains(t, patch, models.FieldComment)
}

func TestBuildStatusPatchRequiresComment(t *testing.T) {
	rec := &models.Client{Status: models.StatusPending}
	for _, s := range []models.ClientStatus{models.StatusRescheduled, models.StatusUncertain} {
		patch, err := BuildStatusPatch(rec, StatusChange{Status: s, Comment: "   "}, "u", at(2024, 3, 10, 12, 0))
		assert.ErrorIs(t, err, ErrCommentRequired)
		assert.Nil(t, patch)
	}

	patch, err := BuildStatusPatch(rec, StatusChange{Status: models.StatusRescheduled, Comment: " на 15 "}, "u", at(2024, 3, 10, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, "на 15", patch[models.FieldComment])
}

func TestBuildStatusPatchUnknownStatus(t *testing.T) {
	_, err := BuildStatusPatch(&models.Client{}, StatusChange{Status: "archived"}, "u", at(2024, 3, 10, 12, 0))
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestLeavingPaidResetsPayment(t *testing.T) {
	paidAt := at(2024, 3, 9, 12, 0)
	rec := &models.Client{
		Status:         models.StatusPaid,
		PaidAt:         &paidAt,
		PaymentAmount:  "4000",
		OriginalAmount: "5000",
		PaymentMethod:  models.PaymentTransfer,
		TransferTo:     "Муслим",
	}

	patch, err := BuildStatusPatch(rec, StatusChange{Status: models.StatusPending}, "u", at(2024, 3, 10, 12, 0))
	require.NoError(t, err)

	next, err := ApplyPatch(rec, patch)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, next.Status)
	assert.Nil(t, next.PaidAt)
	assert.Empty(t, next.PaymentMethod)
	assert.Empty(t, next.TransferTo)
	assert.Empty(t, next.OriginalAmount)
	assert.Equal(t, "5000", next.PaymentAmount)
	// the source record is untouched
	assert.NotNil(t, rec.PaidAt)
}

func TestPaidAtSetExactlyWhenPaid(t *testing.T) {
	now := at(2024, 3, 10, 12, 0)
	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			rec := &models.Client{Status: from, PaymentAmount: "100"}
			if from == models.StatusPaid {
				p := now.AddDate(0, 0, -1)
				rec.PaidAt = &p
				rec.PaymentMethod = models.PaymentCash
			}
			patch, err := BuildStatusPatch(rec, StatusChange{Status: to, Comment: "7"}, "u", now)
			require.NoError(t, err, "%s -> %s", from, to)

			next, err := ApplyPatch(rec, patch)
			require.NoError(t, err)
			assert.Equal(t, to == models.StatusPaid, next.PaidAt != nil, "%s -> %s", from, to)
			if from == models.StatusPaid && to != models.StatusPaid {
				assert.Empty(t, next.PaymentMethod, "%s -> %s", from, to)
			}
		}
	}
}

func TestPaymentExtra(t *testing.T) {
	rec := &models.Client{PaymentAmount: "5000"}

	_, err := PaymentExtra(rec, Payment{Method: "card"})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = PaymentExtra(rec, Payment{Method: models.PaymentTransfer, Amount: "5000"})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = PaymentExtra(rec, Payment{Method: models.PaymentCash, Amount: "-1"})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	extra, err := PaymentExtra(rec, Payment{Method: models.PaymentTransfer, Amount: "4500", TransferTo: "Сафаи"})
	require.NoError(t, err)
	assert.Equal(t, "4500", extra[models.FieldPaymentAmount])
	assert.Equal(t, "5000", extra[models.FieldOriginalAmount])
	assert.Equal(t, "Сафаи", extra[models.FieldTransferTo])

	extra, err = PaymentExtra(rec, Payment{Method: models.PaymentCash, TransferTo: "Сафаи"})
	require.NoError(t, err)
	assert.Equal(t, "5000", extra[models.FieldPaymentAmount])
	assert.Nil(t, extra[models.FieldTransferTo])
}

func TestPaidWithExtraKeepsBackfilledPaidAt(t *testing.T) {
	now := at(2024, 3, 10, 12, 0)
	backfill := at(2024, 3, 1, 12, 0)
	patch, err := BuildStatusPatch(&models.Client{}, StatusChange{
		Status: models.StatusPaid,
		Extra:  models.Patch{models.FieldPaidAt: backfill},
	}, "", now)
	require.NoError(t, err)
	assert.Equal(t, backfill, patch[models.FieldPaidAt])
	assert.NotContains(t, patch, models.FieldUpdatedBy)
}
