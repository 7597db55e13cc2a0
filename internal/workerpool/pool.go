// Package workerpool fans a Job out to one RandomX VM per thread and
// collects Shares found by any of them, grounded on the reference
// miner's worker-pool/thread-per-VM design.
package workerpool

import (
	"github.com/sirupsen/logrus"

	"github.com/anonmine-dev/corexminer/internal/hashengine"
	"github.com/anonmine-dev/corexminer/internal/hashlog"
	"github.com/anonmine-dev/corexminer/internal/hashrate"
	"github.com/anonmine-dev/corexminer/internal/miningjob"
	"github.com/anonmine-dev/corexminer/internal/share"
)

// Pool owns a fixed number of Workers, the JobSlot they all poll, and the
// Shares channel they all feed.
type Pool struct {
	slot    *JobSlot
	workers []*Worker
	shares  chan share.Share
	stop    chan struct{}
}

// New builds a Pool of threadCount workers sharing a single Engine and
// Tracker. threadCount must be at least 1.
func New(threadCount int, engine hashengine.Engine, rate *hashrate.Tracker, logger *hashlog.Logger, log *logrus.Entry) *Pool {
	if threadCount < 1 {
		threadCount = 1
	}
	slot := &JobSlot{}
	shares := make(chan share.Share, threadCount*2)

	p := &Pool{
		slot:   slot,
		shares: shares,
		stop:   make(chan struct{}),
	}

	for i := 0; i < threadCount; i++ {
		w := NewWorker(i, uint32(threadCount), slot, engine, rate, shares, log)
		w.Log = logger
		p.workers = append(p.workers, w)
	}
	return p
}

// Start launches every worker's goroutine.
func (p *Pool) Start() {
	for _, w := range p.workers {
		go w.Run(p.stop)
	}
}

// Stop signals every worker to exit. It does not wait for them to drain.
func (p *Pool) Stop() {
	close(p.stop)
}

// SubmitJob publishes a new job to every worker.
func (p *Pool) SubmitJob(j miningjob.Job) {
	p.slot.Store(j)
}

// Shares returns the channel found shares are delivered on.
func (p *Pool) Shares() <-chan share.Share {
	return p.shares
}
