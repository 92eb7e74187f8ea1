package domain

// Event is one of the closed set of session notifications. Any transport
// (callback, channel, message queue) can carry them without losing
// information; they replace per-surface UI callbacks.
type Event interface {
	sessionEvent()
}

// ShipmentLoaded is emitted when a shipment resolves and the session is
// ready to scan (or already complete, for zero-item shipments).
type ShipmentLoaded struct {
	Shipment ShipmentReference
	Progress Progress
}

// ItemAccepted is emitted after the ledger confirms a scan.
type ItemAccepted struct {
	Record   ScanRecord
	Progress Progress
}

// ItemRejected is emitted when the ledger refuses a scan. The session has
// already returned to ready; the caller decides whether to retry.
type ItemRejected struct {
	Item   ItemReference
	Reason RejectReason
}

// BatchCompleted is emitted when the last expected item is confirmed.
type BatchCompleted struct {
	Shipment ShipmentReference
	Records  []ScanRecord
}

// ExceptionRaised is emitted when a session terminates on the exception
// path.
type ExceptionRaised struct {
	Exception ExceptionRecord
}

func (ShipmentLoaded) sessionEvent()  {}
func (ItemAccepted) sessionEvent()    {}
func (ItemRejected) sessionEvent()    {}
func (BatchCompleted) sessionEvent()  {}
func (ExceptionRaised) sessionEvent() {}
