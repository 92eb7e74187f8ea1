package progress

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInProgressSession(t *testing.T) {
	at := time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC)

	output, err := Render(Snapshot{
		Shipment: &domain.ShipmentReference{
			ID:            "SHP-100",
			Origin:        "Singapore",
			BatchID:       "B-77",
			ProductName:   "Medical Gloves",
			ExpectedItems: 3,
		},
		State:    domain.StateReady,
		Progress: domain.Progress{Scanned: 1, Total: 3, Percentage: 33, Missing: 2},
		Records: []domain.ScanRecord{
			{
				Item:       domain.ItemReference{ID: "BOX-0001", Sequence: 1},
				AcceptedAt: at,
				Receipt:    "rcpt-abc",
			},
		},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Shipment SHP-100")
	assert.Contains(t, output, "Medical Gloves, from Singapore, batch B-77")
	assert.Contains(t, output, "1/3")
	assert.Contains(t, output, "33%")
	assert.Contains(t, output, "BOX-0001")
	assert.Contains(t, output, "receipt rcpt-abc at 14:30:00")
	assert.Contains(t, output, "2 remaining")
	assert.Contains(t, output, "[")
	assert.Contains(t, output, "]")
}

func TestRenderCompletedSession(t *testing.T) {
	output, err := Render(Snapshot{
		Shipment: &domain.ShipmentReference{ID: "SHP-200", ExpectedItems: 2},
		State:    domain.StateCompleted,
		Progress: domain.Progress{Scanned: 2, Total: 2, Percentage: 100},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Batch complete.")
	assert.NotContains(t, output, "remaining")
}

func TestRenderExceptionSession(t *testing.T) {
	output, err := Render(Snapshot{
		Shipment: &domain.ShipmentReference{ID: "SHP-300", ExpectedItems: 5},
		State:    domain.StateException,
		Progress: domain.Progress{Scanned: 2, Total: 5, Percentage: 40, Missing: 3},
		Exception: &domain.ExceptionRecord{
			Message:      "items missing or damaged",
			ScannedCount: 2,
			MissingCount: 3,
		},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Exception: items missing or damaged (2 scanned, 3 missing)")
}

func TestRenderNoShipmentLoaded(t *testing.T) {
	output, err := Render(Snapshot{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No shipment loaded.")
}

func TestRenderRecentRecordsLimit(t *testing.T) {
	at := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	records := make([]domain.ScanRecord, 0, 5)
	for i := 1; i <= 5; i++ {
		records = append(records, domain.ScanRecord{
			Item:       domain.ItemReference{ID: fmt.Sprintf("BOX-%04d", i), Sequence: i},
			AcceptedAt: at.Add(time.Duration(i) * time.Minute),
			Receipt:    "rcpt",
		})
	}

	output, err := Render(Snapshot{
		Shipment: &domain.ShipmentReference{ID: "SHP-400", ExpectedItems: 8},
		State:    domain.StateReady,
		Progress: domain.Progress{Scanned: 5, Total: 8, Percentage: 62, Missing: 3},
		Records:  records,
	}, RenderOptions{RecentRecords: 2})

	require.NoError(t, err)
	assert.NotContains(t, output, "BOX-0003")
	assert.Contains(t, output, "BOX-0004")
	assert.Contains(t, output, "BOX-0005")
}

func TestRenderProgressBarFill(t *testing.T) {
	s := newStyles()

	full := renderProgressBar(100, 10, s)
	assert.Equal(t, 10, strings.Count(full, "="))
	assert.Equal(t, 0, strings.Count(full, "-"))

	empty := renderProgressBar(0, 10, s)
	assert.Equal(t, 0, strings.Count(empty, "="))
	assert.Equal(t, 10, strings.Count(empty, "-"))

	half := renderProgressBar(50, 10, s)
	assert.Equal(t, 5, strings.Count(half, "="))
	assert.Equal(t, 5, strings.Count(half, "-"))
}
