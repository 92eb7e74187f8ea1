package domain

// Progress is the human-facing snapshot of a session. It is derived on
// demand from session state and never stored, so it cannot drift.
type Progress struct {
	Scanned    int
	Total      int
	Percentage int
	Missing    int
}

// Snapshot computes the progress view for a session. Percentage is floor
// rounded; a zero-item shipment reports 100 because the session is
// complete by construction.
func Snapshot(s *ScanSession) Progress {
	scanned := s.Scanned()
	total := s.Shipment().ExpectedItems

	var percentage int
	switch {
	case total > 0:
		percentage = scanned * 100 / total
	case s.State() == StateCompleted:
		percentage = 100
	}

	return Progress{
		Scanned:    scanned,
		Total:      total,
		Percentage: percentage,
		Missing:    total - scanned,
	}
}
