package domain

import "errors"

var (
	ErrEmptyCode        = errors.New("code is empty")
	ErrUnrecognizedCode = errors.New("code shape not recognized")
	ErrInvalidState     = errors.New("invalid session state for transition")
	ErrAlreadyScanned   = errors.New("item already scanned in this session")
	ErrShipmentNotFound = errors.New("shipment not found")
)

// RejectReason is the ledger's verdict on a scan it refused to confirm.
type RejectReason string

const (
	ReasonAlreadyConfirmed  RejectReason = "ALREADY_CONFIRMED"
	ReasonNotInShipment     RejectReason = "NOT_IN_SHIPMENT"
	ReasonWrongRole         RejectReason = "WRONG_ROLE"
	ReasonLedgerUnavailable RejectReason = "LEDGER_UNAVAILABLE"
)

// Retryable reports whether the same item reference may be resubmitted
// without re-scanning the physical code.
func (r RejectReason) Retryable() bool {
	return r == ReasonLedgerUnavailable
}
