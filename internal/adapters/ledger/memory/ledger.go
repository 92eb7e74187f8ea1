// Package memory provides an in-process system-of-record for demos and
// tests: registered shipments, manifest checks, at-most-once confirms
// with receipts, actor allowlists, and a toggleable outage mode.
package memory

import (
	"context"
	"sync"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/bnema/shipscan/internal/ports"
	"github.com/google/uuid"
)

type shipmentState struct {
	ref           domain.ShipmentReference
	manifest      map[string]bool
	confirmedBy   map[string]string
	allowedActors map[string]bool
	sequence      int
}

type Ledger struct {
	mu          sync.Mutex
	shipments   map[string]*shipmentState
	exceptions  []ports.ExceptionReport
	unavailable bool
}

var _ ports.LedgerClient = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{shipments: map[string]*shipmentState{}}
}

// RegisterShipment installs a shipment and its item manifest. The
// expected item count is taken from the manifest when the reference
// leaves it zero.
func (l *Ledger) RegisterShipment(ref domain.ShipmentReference, itemIDs ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	manifest := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		manifest[id] = true
	}
	if ref.ExpectedItems == 0 {
		ref.ExpectedItems = len(manifest)
	}

	l.shipments[ref.ID] = &shipmentState{
		ref:         ref,
		manifest:    manifest,
		confirmedBy: map[string]string{},
	}
}

// RestrictActors limits who may confirm scans for a shipment. Without a
// restriction every actor is allowed.
func (l *Ledger) RestrictActors(shipmentID string, actorIDs ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.shipments[shipmentID]
	if !ok {
		return
	}
	state.allowedActors = make(map[string]bool, len(actorIDs))
	for _, id := range actorIDs {
		state.allowedActors[id] = true
	}
}

// SetUnavailable switches the ledger into outage mode: every confirm is
// refused with LEDGER_UNAVAILABLE until switched back.
func (l *Ledger) SetUnavailable(down bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unavailable = down
}

func (l *Ledger) ResolveShipment(ctx context.Context, ref string) (domain.ShipmentReference, error) {
	if err := ctx.Err(); err != nil {
		return domain.ShipmentReference{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.shipments[ref]
	if !ok {
		return domain.ShipmentReference{}, domain.ErrShipmentNotFound
	}
	return state.ref, nil
}

func (l *Ledger) VerifyAndConfirm(ctx context.Context, shipmentID, itemRef, actorID string) (ports.ConfirmResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.ConfirmResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.unavailable {
		return ports.ConfirmResult{Reason: domain.ReasonLedgerUnavailable}, nil
	}

	state, ok := l.shipments[shipmentID]
	if !ok {
		return ports.ConfirmResult{Reason: domain.ReasonNotInShipment}, nil
	}
	if state.allowedActors != nil && !state.allowedActors[actorID] {
		return ports.ConfirmResult{Reason: domain.ReasonWrongRole}, nil
	}
	if !state.manifest[itemRef] {
		return ports.ConfirmResult{Reason: domain.ReasonNotInShipment}, nil
	}
	if _, confirmed := state.confirmedBy[itemRef]; confirmed {
		return ports.ConfirmResult{Reason: domain.ReasonAlreadyConfirmed}, nil
	}

	state.sequence++
	state.confirmedBy[itemRef] = actorID
	return ports.ConfirmResult{
		Accepted: true,
		Receipt:  "rcpt-" + uuid.NewString(),
		Sequence: state.sequence,
	}, nil
}

func (l *Ledger) ReportException(ctx context.Context, report ports.ExceptionReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.exceptions = append(l.exceptions, report)
	return nil
}

// Exceptions returns the reports received so far, oldest first.
func (l *Ledger) Exceptions() []ports.ExceptionReport {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ports.ExceptionReport, len(l.exceptions))
	copy(out, l.exceptions)
	return out
}
