package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientApply(t *testing.T) {
	paid := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := &Client{ID: "c1", Status: StatusPending, PaymentAmount: "5000"}

	err := c.Apply(Patch{
		FieldStatus:         StatusPaid,
		FieldPaidAt:         paid,
		FieldPaymentMethod:  PaymentTransfer,
		FieldTransferTo:     "Муслим",
		FieldPaymentAmount:  "4000",
		FieldOriginalAmount: "5000",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, c.Status)
	require.NotNil(t, c.PaidAt)
	assert.True(t, paid.Equal(*c.PaidAt))
	assert.Equal(t, PaymentTransfer, c.PaymentMethod)
	assert.True(t, c.AmountAdjusted())

	err = c.Apply(Patch{
		FieldStatus:         StatusPending,
		FieldPaidAt:         nil,
		FieldPaymentMethod:  nil,
		FieldTransferTo:     nil,
		FieldOriginalAmount: nil,
	})
	require.NoError(t, err)
	assert.Nil(t, c.PaidAt)
	assert.Empty(t, c.PaymentMethod)
	assert.Empty(t, c.TransferTo)
	assert.False(t, c.AmountAdjusted())
}

func TestPatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"ok", Patch{FieldStatus: "no_answer", FieldUpdatedBy: "a@b.c"}, false},
		{"unknown field", Patch{"created_at": time.Now()}, true},
		{"bad status", Patch{FieldStatus: "lost"}, true},
		{"null status", Patch{FieldStatus: nil}, true},
		{"bad paid_at type", Patch{FieldPaidAt: "yesterday"}, true},
		{"bad string type", Patch{FieldComment: 12}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientClone(t *testing.T) {
	paid := time.Now()
	c := &Client{ID: "c1", PaidAt: &paid}
	cp := c.Clone()
	*cp.PaidAt = paid.Add(time.Hour)
	assert.True(t, c.PaidAt.Equal(paid))
}
