package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotPercentageRoundsDown(t *testing.T) {
	t.Parallel()

	s := loadedSession(t, 3)
	scanOne(t, s, "I1", 1)

	progress := Snapshot(s)
	assert.Equal(t, 1, progress.Scanned)
	assert.Equal(t, 3, progress.Total)
	assert.Equal(t, 33, progress.Percentage)
	assert.Equal(t, 2, progress.Missing)
}

func TestSnapshotEmptySession(t *testing.T) {
	t.Parallel()

	progress := Snapshot(NewScanSession())
	assert.Zero(t, progress.Scanned)
	assert.Zero(t, progress.Total)
	assert.Zero(t, progress.Percentage)
	assert.Zero(t, progress.Missing)
}

func TestSnapshotSurvivesLaterTransitions(t *testing.T) {
	t.Parallel()

	s := loadedSession(t, 2)
	scanOne(t, s, "I1", 1)
	before := Snapshot(s)

	scanOne(t, s, "I2", 2)

	assert.Equal(t, 1, before.Scanned)
	assert.Equal(t, 50, before.Percentage)
	assert.Equal(t, 100, Snapshot(s).Percentage)
}
