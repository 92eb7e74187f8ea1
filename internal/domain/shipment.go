package domain

import "time"

// ShipmentReference is the resolved identity of one shipment. Immutable
// once loaded into a session.
type ShipmentReference struct {
	ID            string
	Origin        string
	BatchID       string
	ProductName   string
	ExpectedItems int
}

// ItemReference identifies a single item or container inside a shipment.
type ItemReference struct {
	ID       string
	Sequence int
}

// Equal reports item identity. Two references are the same item iff their
// IDs match; Sequence is advisory.
func (i ItemReference) Equal(other ItemReference) bool {
	return i.ID == other.ID
}

// ScanRecord is one confirmed scan. Created only after the ledger accepts
// the item; never mutated afterwards.
type ScanRecord struct {
	Item           ItemReference
	AcceptedAt     time.Time
	Receipt        string
	LedgerSequence int
}

// DefaultExceptionMessage is used when an exception is raised without a
// free-text reason.
const DefaultExceptionMessage = "items missing or damaged"

// ExceptionRecord captures the terminal exception outcome of a session.
type ExceptionRecord struct {
	Message      string
	ScannedCount int
	MissingCount int
	RaisedAt     time.Time
}
