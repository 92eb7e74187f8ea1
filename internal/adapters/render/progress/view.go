package progress

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func renderView(snapshot Snapshot, opts RenderOptions, s styles) string {
	if snapshot.Shipment == nil {
		return s.header.Render("No shipment loaded.")
	}

	ref := snapshot.Shipment
	lines := []string{
		s.title.Render(fmt.Sprintf("Shipment %s", ref.ID)),
		s.header.Render(shipmentSubtitle(ref)),
		progressLine(snapshot.Progress, s),
	}

	for _, line := range recordLines(snapshot.Records, opts.RecentRecords, s) {
		lines = append(lines, line)
	}

	if line := statusLine(snapshot, s); line != "" {
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func shipmentSubtitle(ref *domain.ShipmentReference) string {
	parts := make([]string, 0, 3)
	if ref.ProductName != "" {
		parts = append(parts, ref.ProductName)
	}
	if ref.Origin != "" {
		parts = append(parts, "from "+ref.Origin)
	}
	if ref.BatchID != "" {
		parts = append(parts, "batch "+ref.BatchID)
	}

	if len(parts) == 0 {
		return "no manifest details"
	}

	return strings.Join(parts, ", ")
}

func progressLine(p domain.Progress, s styles) string {
	bar := renderProgressBar(p.Percentage, 24, s)
	counter := s.counter.Render(fmt.Sprintf("%d/%d", p.Scanned, p.Total))
	percent := s.detail.Render(fmt.Sprintf("%d%%", p.Percentage))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		bar,
		" ",
		counter,
		" ",
		percent,
	)
}

func recordLines(records []domain.ScanRecord, limit int, s styles) []string {
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		item := s.record.Render(fmt.Sprintf("  %s", rec.Item.ID))
		receipt := s.receipt.Render(fmt.Sprintf("receipt %s at %s", rec.Receipt, rec.AcceptedAt.Format(time.TimeOnly)))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, item, " ", receipt))
	}

	return lines
}

func statusLine(snapshot Snapshot, s styles) string {
	switch snapshot.State {
	case domain.StateCompleted:
		return s.success.Render("Batch complete.")
	case domain.StateException:
		exc := snapshot.Exception
		if exc == nil {
			return s.warning.Render("Exception raised.")
		}
		return s.warning.Render(fmt.Sprintf(
			"Exception: %s (%d scanned, %d missing)",
			exc.Message, exc.ScannedCount, exc.MissingCount,
		))
	default:
		if snapshot.Progress.Missing > 0 {
			return s.detail.Render(fmt.Sprintf("%d remaining", snapshot.Progress.Missing))
		}
		return ""
	}
}

func renderProgressBar(percent, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := float64(clampPercent(percent)) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
