package models

import (
	"fmt"
	"time"
)

// StringValue returns the string stored under f. null is true when the patch clears f.
func (p Patch) StringValue(f Field) (s string, null bool, err error) {
	switch v := p[f].(type) {
	case nil:
		return "", true, nil
	case string:
		return v, false, nil
	case ClientStatus:
		return string(v), false, nil
	case PaymentMethod:
		return string(v), false, nil
	default:
		return "", false, fmt.Errorf("field %s: unexpected value type %T", f, v)
	}
}

// TimeValue returns the timestamp stored under f. A nil pointer means the field is cleared.
func (p Patch) TimeValue(f Field) (*time.Time, error) {
	switch v := p[f].(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		t := *v
		return &t, nil
	default:
		return nil, fmt.Errorf("field %s: unexpected value type %T", f, v)
	}
}

// Validate rejects fields outside PatchableFields and values of the wrong type.
func (p Patch) Validate() error {
	for f := range p {
		known := false
		for _, pf := range PatchableFields {
			if f == pf {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("field %s is not patchable", f)
		}
		if f == FieldPaidAt {
			if _, err := p.TimeValue(f); err != nil {
				return err
			}
			continue
		}
		if _, _, err := p.StringValue(f); err != nil {
			return err
		}
	}
	if p.Has(FieldStatus) {
		s, null, _ := p.StringValue(FieldStatus)
		if null || !ClientStatus(s).Valid() {
			return fmt.Errorf("invalid status %q", s)
		}
	}
	return nil
}

// Apply writes the patch onto c.
func (c *Client) Apply(p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for f := range p {
		if f == FieldPaidAt {
			t, _ := p.TimeValue(f)
			c.PaidAt = t
			continue
		}
		s, _, _ := p.StringValue(f)
		switch f {
		case FieldStatus:
			c.Status = ClientStatus(s)
		case FieldComment:
			c.Comment = s
		case FieldPaymentMethod:
			c.PaymentMethod = PaymentMethod(s)
		case FieldTransferTo:
			c.TransferTo = s
		case FieldUpdatedBy:
			c.UpdatedBy = s
		case FieldPaymentAmount:
			c.PaymentAmount = s
		case FieldOriginalAmount:
			c.OriginalAmount = s
		}
	}
	return nil
}
