package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotReflectsReportedValues(t *testing.T) {
	r := New()

	r.ReportHashRate(12345.6)
	r.ReportShareFound("job-1", true)
	r.ReportShareFound("job-1", false)
	r.ReportJobReceived("job-1")
	r.ReportConnectionStatus(true, false)

	snap := r.Snapshot()
	assert.Equal(t, 12345.6, snap.HashRate)
	assert.Equal(t, uint64(1), snap.SharesAccepted)
	assert.Equal(t, uint64(1), snap.SharesRejected)
	assert.Equal(t, uint64(1), snap.JobsReceived)
	assert.True(t, snap.Connected)
	assert.False(t, snap.Donating)
}
