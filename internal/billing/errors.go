package billing

import "errors"

var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrNoItems          = errors.New("invoice must have at least one item")
	ErrBadItem          = errors.New("invoice item must have a description, positive quantity and non-negative price")
	ErrNotDraft         = errors.New("invoice is not in draft status")
	ErrNotIssued        = errors.New("invoice is not in issued status")
	ErrNotVoidable      = errors.New("invoice cannot be voided")
	ErrBadPaymentAmount = errors.New("payment amount must be positive")
	ErrOverpayment      = errors.New("payment exceeds the outstanding balance")
	ErrMissingMethod    = errors.New("payment method is required")
)
