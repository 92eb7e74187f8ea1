package ports

import (
	"context"

	"github.com/bnema/shipscan/internal/domain"
)

// ConfirmResult is the ledger's verdict on one scanned item. Receipt and
// Sequence are set only when Accepted.
type ConfirmResult struct {
	Accepted bool
	Receipt  string
	Sequence int
	Reason   domain.RejectReason
}

// ExceptionReport is the payload sent when a session terminates on the
// exception path.
type ExceptionReport struct {
	ShipmentID    string
	ActorID       string
	Message       string
	ScannedCount  int
	ExpectedCount int
}

// LedgerClient is the backend of record. Confirmed scans are durable on
// the remote side regardless of local session lifetime.
//
// VerifyAndConfirm is the only call the engine blocks on; callers bound
// it with a context deadline, and cancellation is mapped to the rejection
// path rather than a stuck session.
type LedgerClient interface {
	// ResolveShipment returns shipment metadata and the expected item
	// count. A reference the ledger does not know yields
	// domain.ErrShipmentNotFound.
	ResolveShipment(ctx context.Context, ref string) (domain.ShipmentReference, error)

	// VerifyAndConfirm verifies one item against the shipment manifest and
	// commits it for the given actor. A refusal is a ConfirmResult with
	// Accepted false, not an error; errors mean the verdict is unknown.
	VerifyAndConfirm(ctx context.Context, shipmentID, itemRef, actorID string) (ConfirmResult, error)

	// ReportException records a missing/damaged declaration against the
	// shipment.
	ReportException(ctx context.Context, report ExceptionReport) error
}
