package domain

import (
	"strings"
	"time"
)

// SessionState is the scan-verification workflow state of one session.
type SessionState string

const (
	StateEmpty     SessionState = "empty"
	StateLoading   SessionState = "loading_shipment"
	StateReady     SessionState = "ready_to_scan"
	StateScanning  SessionState = "scanning_one"
	StateCompleted SessionState = "completed"
	StateException SessionState = "exception"
)

// Terminal reports whether no further scans can ever be accepted.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateException
}

// ScanSession is one actor's in-progress attempt to receive one shipment.
// It is single-writer: at most one confirm may be in flight, enforced by
// the StateScanning state rather than by locking. All mutation goes
// through the transition methods below.
type ScanSession struct {
	shipment  ShipmentReference
	state     SessionState
	records   []ScanRecord
	exception *ExceptionRecord
	pending   *ItemReference
}

// NewScanSession returns a fresh session in StateEmpty.
func NewScanSession() *ScanSession {
	return &ScanSession{state: StateEmpty}
}

func (s *ScanSession) State() SessionState { return s.state }

func (s *ScanSession) Shipment() ShipmentReference { return s.shipment }

// Records returns the confirmed scans in acceptance order. The slice is a
// copy; records themselves are immutable.
func (s *ScanSession) Records() []ScanRecord {
	out := make([]ScanRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *ScanSession) Scanned() int { return len(s.records) }

// Exception returns the exception record, set only in StateException.
func (s *ScanSession) Exception() *ExceptionRecord {
	if s.exception == nil {
		return nil
	}
	record := *s.exception
	return &record
}

// Pending returns the item currently awaiting ledger confirmation.
func (s *ScanSession) Pending() *ItemReference {
	if s.pending == nil {
		return nil
	}
	item := *s.pending
	return &item
}

// HasScanned reports whether an item with the given ID is already in the
// record set.
func (s *ScanSession) HasScanned(itemID string) bool {
	for _, record := range s.records {
		if record.Item.ID == itemID {
			return true
		}
	}
	return false
}

// StartLoading begins shipment resolution. Valid only from StateEmpty.
func (s *ScanSession) StartLoading() error {
	if s.state != StateEmpty {
		return ErrInvalidState
	}
	s.state = StateLoading
	return nil
}

// FinishLoading installs the resolved shipment. A shipment expecting zero
// items is degenerate but legal: the session completes with no scans.
func (s *ScanSession) FinishLoading(shipment ShipmentReference) error {
	if s.state != StateLoading {
		return ErrInvalidState
	}

	s.shipment = shipment
	s.records = nil
	if shipment.ExpectedItems == 0 {
		s.state = StateCompleted
		return nil
	}
	s.state = StateReady
	return nil
}

// AbortLoading discards a failed resolution. No partial session survives;
// the caller may retry with a different code.
func (s *ScanSession) AbortLoading() error {
	if s.state != StateLoading {
		return ErrInvalidState
	}
	s.shipment = ShipmentReference{}
	s.state = StateEmpty
	return nil
}

// BeginScan puts one item candidate in flight. Valid only from
// StateReady; a candidate already in the record set is refused with
// ErrAlreadyScanned, which callers treat as an informational no-op.
func (s *ScanSession) BeginScan(item ItemReference) error {
	if s.state != StateReady {
		return ErrInvalidState
	}
	if s.HasScanned(item.ID) {
		return ErrAlreadyScanned
	}

	s.pending = &item
	s.state = StateScanning
	return nil
}

// Accept records the ledger's confirmation of the pending item. The
// session completes exactly when the record count reaches the expected
// item count.
func (s *ScanSession) Accept(receipt string, ledgerSequence int, now time.Time) (ScanRecord, error) {
	if s.state != StateScanning || s.pending == nil {
		return ScanRecord{}, ErrInvalidState
	}

	record := ScanRecord{
		Item:           *s.pending,
		AcceptedAt:     now,
		Receipt:        receipt,
		LedgerSequence: ledgerSequence,
	}
	s.records = append(s.records, record)
	s.pending = nil

	if len(s.records) == s.shipment.ExpectedItems {
		s.state = StateCompleted
	} else {
		s.state = StateReady
	}
	return record, nil
}

// RejectScan discards the pending attempt without touching the record
// set and returns the abandoned item so a retryable rejection can be
// resubmitted without re-scanning.
func (s *ScanSession) RejectScan() (ItemReference, error) {
	if s.state != StateScanning || s.pending == nil {
		return ItemReference{}, ErrInvalidState
	}

	item := *s.pending
	s.pending = nil
	s.state = StateReady
	return item, nil
}

// RaiseException terminates the session for missing or damaged items. An
// in-flight scan is abandoned. Valid from StateReady and StateScanning
// only.
func (s *ScanSession) RaiseException(message string, now time.Time) (ExceptionRecord, error) {
	if s.state != StateReady && s.state != StateScanning {
		return ExceptionRecord{}, ErrInvalidState
	}

	if strings.TrimSpace(message) == "" {
		message = DefaultExceptionMessage
	}

	record := ExceptionRecord{
		Message:      message,
		ScannedCount: len(s.records),
		MissingCount: s.shipment.ExpectedItems - len(s.records),
		RaisedAt:     now,
	}
	s.pending = nil
	s.exception = &record
	s.state = StateException
	return record, nil
}

// Reset returns a brand-new empty session. The receiver, terminal or
// not, is left untouched so previously returned snapshots stay valid
// historical views.
func (s *ScanSession) Reset() *ScanSession {
	return NewScanSession()
}
