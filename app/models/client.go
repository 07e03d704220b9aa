package models

import "time"

// Client is a single debtor tracked by the collection team.
type Client struct {
	ID             string        `json:"id"`
	FullName       string        `json:"fullName"`
	Phone          string        `json:"phone"`
	GuarantorPhone string        `json:"guarantorPhone,omitempty"`
	PaymentAmount  string        `json:"paymentAmount"`
	OriginalAmount string        `json:"originalAmount,omitempty"`
	Status         ClientStatus  `json:"status"`
	Comment        string        `json:"comment,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	PaidAt         *time.Time    `json:"paidAt,omitempty"`
	PaymentMethod  PaymentMethod `json:"paymentMethod,omitempty"`
	TransferTo     string        `json:"transferTo,omitempty"`
	UpdatedBy      string        `json:"updatedBy,omitempty"`
}

// Clone returns a deep copy of the record.
func (c *Client) Clone() *Client {
	cp := *c
	if c.PaidAt != nil {
		t := *c.PaidAt
		cp.PaidAt = &t
	}
	return &cp
}

// AmountAdjusted reports whether the paid amount differs from the amount originally owed.
func (c *Client) AmountAdjusted() bool {
	return c.OriginalAmount != "" && c.OriginalAmount != c.PaymentAmount
}

// Field names a patchable client column.
type Field string

const (
	FieldStatus         Field = "status"
	FieldComment        Field = "comment"
	FieldPaidAt         Field = "paid_at"
	FieldPaymentMethod  Field = "payment_method"
	FieldTransferTo     Field = "transfer_to"
	FieldUpdatedBy      Field = "updated_by"
	FieldPaymentAmount  Field = "payment_amount"
	FieldOriginalAmount Field = "original_amount"
)

// PatchableFields is the whitelist of fields a Patch may touch.
var PatchableFields = []Field{
	FieldStatus, FieldComment, FieldPaidAt, FieldPaymentMethod,
	FieldTransferTo, FieldUpdatedBy, FieldPaymentAmount, FieldOriginalAmount,
}

// Patch is a partial update of a client record. A nil value clears the field.
//
// Values are string, ClientStatus, PaymentMethod or time.Time (paid_at).
type Patch map[Field]any

// Has reports whether the patch touches f.
func (p Patch) Has(f Field) bool {
	_, ok := p[f]
	return ok
}

// Merge copies every entry of other into p, overriding existing keys.
func (p Patch) Merge(other Patch) Patch {
	for k, v := range other {
		p[k] = v
	}
	return p
}
