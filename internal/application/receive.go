package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/bnema/shipscan/internal/ports"
)

// ErrWrongCodeKind is returned when a shipment code arrives where an item
// code is needed, or the other way around.
var ErrWrongCodeKind = errors.New("code kind not valid for this step")

// ErrNoSession is returned when an operation targets an actor/shipment
// pair that has no session. Load a shipment first.
var ErrNoSession = errors.New("no active session for this actor and shipment")

// ScanStatus classifies the outcome of one scan attempt.
type ScanStatus string

const (
	// ScanAccepted means the ledger confirmed the item and a record was
	// appended.
	ScanAccepted ScanStatus = "accepted"
	// ScanDuplicate means the item was already in the session's record
	// set. Informational, not an error: at-most-once held.
	ScanDuplicate ScanStatus = "duplicate"
	// ScanDebounced means the duplicate guard suppressed the read before
	// it reached the session.
	ScanDebounced ScanStatus = "debounced"
	// ScanRejected means the ledger refused the item; see Reason.
	ScanRejected ScanStatus = "rejected"
)

// ScanOutcome reports what one call to Scan did.
type ScanOutcome struct {
	Status    ScanStatus
	Record    *domain.ScanRecord
	Reason    domain.RejectReason
	Progress  domain.Progress
	Completed bool
}

// LoadResult reports a resolved shipment and the session's first
// snapshot.
type LoadResult struct {
	Shipment  domain.ShipmentReference
	Progress  domain.Progress
	Completed bool
}

// ReceiveService drives the scan-verification workflow: parse, debounce,
// session transition, ledger confirm, event fan-out. It owns no session
// state itself; the coordinator does.
type ReceiveService struct {
	ledger  ports.LedgerClient
	coord   *SessionCoordinator
	grammar domain.Grammar
	clock   ports.Clock

	listenerMu sync.Mutex
	listeners  []func(domain.Event)
}

func NewReceiveService(ledger ports.LedgerClient, coord *SessionCoordinator, grammar domain.Grammar, clock ports.Clock) *ReceiveService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ReceiveService{
		ledger:  ledger,
		coord:   coord,
		grammar: grammar,
		clock:   clock,
	}
}

// Subscribe registers a listener for session events. Listeners are
// invoked synchronously in subscription order after each transition.
func (s *ReceiveService) Subscribe(fn func(domain.Event)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *ReceiveService) emit(event domain.Event) {
	s.listenerMu.Lock()
	listeners := make([]func(domain.Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// LoadShipment parses a shipment-level code, resolves it against the
// ledger, and readies the pair's session. A failed resolution leaves the
// session empty with nothing retained.
func (s *ReceiveService) LoadShipment(ctx context.Context, actorID, raw string) (LoadResult, error) {
	parsed, err := s.grammar.Parse(raw)
	if err != nil {
		return LoadResult{}, err
	}
	if parsed.Kind != domain.CodeShipment {
		return LoadResult{}, fmt.Errorf("%w: expected a shipment code", ErrWrongCodeKind)
	}

	handle := s.coord.GetOrCreate(actorID, parsed.ID)

	var transitionErr error
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, _ *domain.DuplicateGuard) {
		transitionErr = session.StartLoading()
	})
	if transitionErr != nil {
		return LoadResult{}, transitionErr
	}

	shipment, resolveErr := s.ledger.ResolveShipment(ctx, parsed.ID)

	var result LoadResult
	var records []domain.ScanRecord
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, _ *domain.DuplicateGuard) {
		if resolveErr != nil {
			transitionErr = session.AbortLoading()
			return
		}
		transitionErr = session.FinishLoading(shipment)
		if transitionErr != nil {
			return
		}
		result = LoadResult{
			Shipment:  shipment,
			Progress:  domain.Snapshot(session),
			Completed: session.State() == domain.StateCompleted,
		}
		records = session.Records()
	})
	if resolveErr != nil {
		return LoadResult{}, fmt.Errorf("resolve shipment %s: %w", parsed.ID, resolveErr)
	}
	if transitionErr != nil {
		return LoadResult{}, transitionErr
	}

	s.emit(domain.ShipmentLoaded{Shipment: result.Shipment, Progress: result.Progress})
	if result.Completed {
		s.emit(domain.BatchCompleted{Shipment: result.Shipment, Records: records})
	}
	return result, nil
}

// Scan pushes one raw item code through the pipeline: parse, duplicate
// guard, session begin-scan, ledger verify-and-confirm, session accept or
// reject. The pair must have loaded a shipment first; Scan never creates
// a session. The caller bounds the ledger call with ctx; cancellation is
// treated as a LEDGER_UNAVAILABLE rejection so the session never sticks
// in the scanning state.
func (s *ReceiveService) Scan(ctx context.Context, actorID, shipmentID, raw string) (ScanOutcome, error) {
	parsed, err := s.grammar.Parse(raw)
	if err != nil {
		return ScanOutcome{}, err
	}
	if parsed.Kind != domain.CodeItem {
		return ScanOutcome{}, fmt.Errorf("%w: expected an item code", ErrWrongCodeKind)
	}

	handle, ok := s.coord.Lookup(actorID, shipmentID)
	if !ok {
		return ScanOutcome{}, ErrNoSession
	}
	item := domain.ItemReference{ID: parsed.ID}

	var outcome ScanOutcome
	var transitionErr error
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, guard *domain.DuplicateGuard) {
		if !guard.ShouldAccept(parsed.Raw, s.clock.Now()) {
			outcome = ScanOutcome{Status: ScanDebounced, Progress: domain.Snapshot(session)}
			return
		}
		switch err := session.BeginScan(item); {
		case errors.Is(err, domain.ErrAlreadyScanned):
			outcome = ScanOutcome{Status: ScanDuplicate, Progress: domain.Snapshot(session)}
		case err != nil:
			// No record was made; the same label must stay presentable.
			guard.Release(parsed.Raw)
			transitionErr = err
		}
	})
	if transitionErr != nil {
		return ScanOutcome{}, transitionErr
	}
	if outcome.Status == ScanDebounced || outcome.Status == ScanDuplicate {
		return outcome, nil
	}

	// The session is now scanning-one; the handle lock is deliberately
	// not held while the ledger decides.
	confirm, confirmErr := s.ledger.VerifyAndConfirm(ctx, shipmentID, item.ID, actorID)
	if confirmErr != nil {
		confirm = ports.ConfirmResult{Accepted: false, Reason: domain.ReasonLedgerUnavailable}
	}

	var record domain.ScanRecord
	var shipment domain.ShipmentReference
	var records []domain.ScanRecord
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, guard *domain.DuplicateGuard) {
		if !confirm.Accepted {
			_, transitionErr = session.RejectScan()
			guard.Release(parsed.Raw)
			outcome = ScanOutcome{
				Status:   ScanRejected,
				Reason:   confirm.Reason,
				Progress: domain.Snapshot(session),
			}
			return
		}

		record, transitionErr = session.Accept(confirm.Receipt, confirm.Sequence, s.clock.Now())
		if transitionErr != nil {
			return
		}
		outcome = ScanOutcome{
			Status:    ScanAccepted,
			Record:    &record,
			Progress:  domain.Snapshot(session),
			Completed: session.State() == domain.StateCompleted,
		}
		shipment = session.Shipment()
		records = session.Records()
	})
	if transitionErr != nil {
		return ScanOutcome{}, transitionErr
	}

	switch outcome.Status {
	case ScanRejected:
		s.emit(domain.ItemRejected{Item: item, Reason: outcome.Reason})
	case ScanAccepted:
		s.emit(domain.ItemAccepted{Record: record, Progress: outcome.Progress})
		if outcome.Completed {
			s.emit(domain.BatchCompleted{Shipment: shipment, Records: records})
		}
	}
	return outcome, nil
}

// RaiseException terminates the pair's session on the exception path and
// reports it to the ledger. The local transition holds even when the
// report fails; the returned error then carries the report failure.
func (s *ReceiveService) RaiseException(ctx context.Context, actorID, shipmentID, message string) (domain.ExceptionRecord, error) {
	handle, ok := s.coord.Lookup(actorID, shipmentID)
	if !ok {
		return domain.ExceptionRecord{}, ErrNoSession
	}

	var record domain.ExceptionRecord
	var expected int
	var transitionErr error
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, _ *domain.DuplicateGuard) {
		record, transitionErr = session.RaiseException(message, s.clock.Now())
		expected = session.Shipment().ExpectedItems
	})
	if transitionErr != nil {
		return domain.ExceptionRecord{}, transitionErr
	}

	s.emit(domain.ExceptionRaised{Exception: record})

	report := ports.ExceptionReport{
		ShipmentID:    shipmentID,
		ActorID:       actorID,
		Message:       record.Message,
		ScannedCount:  record.ScannedCount,
		ExpectedCount: expected,
	}
	if err := s.ledger.ReportException(ctx, report); err != nil {
		return record, fmt.Errorf("report exception for shipment %s: %w", shipmentID, err)
	}
	return record, nil
}

// Reset drops the pair's session. Committed records stay durable on the
// ledger; the next load starts from a brand-new session.
func (s *ReceiveService) Reset(actorID, shipmentID string) {
	s.coord.Drop(actorID, shipmentID)
}

// Progress returns the live snapshot and state for the pair's session.
func (s *ReceiveService) Progress(actorID, shipmentID string) (domain.Progress, domain.SessionState, error) {
	handle, ok := s.coord.Lookup(actorID, shipmentID)
	if !ok {
		return domain.Progress{}, "", ErrNoSession
	}

	var progress domain.Progress
	var state domain.SessionState
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, _ *domain.DuplicateGuard) {
		progress = domain.Snapshot(session)
		state = session.State()
	})
	return progress, state, nil
}

// Records returns the confirmed scans for the pair's session in
// acceptance order.
func (s *ReceiveService) Records(actorID, shipmentID string) ([]domain.ScanRecord, error) {
	handle, ok := s.coord.Lookup(actorID, shipmentID)
	if !ok {
		return nil, ErrNoSession
	}

	var records []domain.ScanRecord
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, _ *domain.DuplicateGuard) {
		records = session.Records()
	})
	return records, nil
}

// Shipment returns the manifest reference the pair's session loaded.
func (s *ReceiveService) Shipment(actorID, shipmentID string) (domain.ShipmentReference, error) {
	handle, ok := s.coord.Lookup(actorID, shipmentID)
	if !ok {
		return domain.ShipmentReference{}, ErrNoSession
	}

	var shipment domain.ShipmentReference
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, _ *domain.DuplicateGuard) {
		shipment = session.Shipment()
	})
	return shipment, nil
}

// Exception returns the exception record for the pair's session, if it
// terminated on the exception path.
func (s *ReceiveService) Exception(actorID, shipmentID string) (*domain.ExceptionRecord, error) {
	handle, ok := s.coord.Lookup(actorID, shipmentID)
	if !ok {
		return nil, ErrNoSession
	}

	var record *domain.ExceptionRecord
	handle.Session(s.clock.Now(), func(session *domain.ScanSession, _ *domain.DuplicateGuard) {
		record = session.Exception()
	})
	return record, nil
}
