// Package display implements the console Reporter, patterned after the
// reference miner's display module but rewritten against logrus instead
// of a bespoke terminal renderer.
package display

import (
	"github.com/sirupsen/logrus"
)

// ConsoleReporter logs every mining event at an appropriate level
// through a shared logrus entry.
type ConsoleReporter struct {
	log *logrus.Entry
}

// New builds a ConsoleReporter writing through log.
func New(log *logrus.Entry) *ConsoleReporter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ConsoleReporter{log: log}
}

func (c *ConsoleReporter) ReportHashRate(hashesPerSecond float64) {
	c.log.WithField("hashes_per_second", hashesPerSecond).Info("hash rate")
}

func (c *ConsoleReporter) ReportShareFound(jobID string, accepted bool) {
	entry := c.log.WithField("job_id", jobID)
	if accepted {
		entry.Info("share accepted")
		return
	}
	entry.Warn("share rejected")
}

func (c *ConsoleReporter) ReportJobReceived(jobID string) {
	c.log.WithField("job_id", jobID).Debug("job received")
}

func (c *ConsoleReporter) ReportConnectionStatus(connected, donating bool) {
	c.log.WithFields(logrus.Fields{
		"connected": connected,
		"donating":  donating,
	}).Info("connection status")
}
