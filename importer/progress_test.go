package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Counts(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 1)

	tracker.Start()
	tracker.Ingested()
	tracker.Skipped()
	tracker.Failed()
	tracker.Ingested()
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "4/4")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "1 skipped, 1 failed")
	assert.Contains(t, output, "\n", "finish should print newline")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Ingested()
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)

	tracker.Start()
	for range 4 {
		tracker.Ingested()
	}
	assert.Empty(t, buf.String(), "should not report before the interval")

	tracker.Ingested()
	assert.Contains(t, buf.String(), "5/10")
}

func TestProgressTracker_NeverExceedsTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 1)

	tracker.Start()
	for range 5 {
		tracker.Ingested()
	}
	tracker.Finish()

	assert.NotContains(t, buf.String(), "3/2")
	assert.Contains(t, buf.String(), "2/2")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 0)

	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0", "should handle zero total")
}
