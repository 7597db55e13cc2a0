// Package supervisor runs the top-level mining loop: it owns the active
// pool Session, the worker Pool, the donation Manager, and the hash-rate
// Tracker, and polls all of their channels on a fixed tick, grounded on
// the reference miner's main supervisory loop.
package supervisor

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anonmine-dev/corexminer/internal/donation"
	"github.com/anonmine-dev/corexminer/internal/hashengine"
	"github.com/anonmine-dev/corexminer/internal/hashlog"
	"github.com/anonmine-dev/corexminer/internal/hashrate"
	"github.com/anonmine-dev/corexminer/internal/share"
	"github.com/anonmine-dev/corexminer/internal/stratum"
	"github.com/anonmine-dev/corexminer/internal/workerpool"
)

const (
	pollInterval     = 10 * time.Millisecond
	keepAliveEvery   = 30 * time.Second
	rateReportEvery  = 10 * time.Second
	donationTickEvery = time.Second
)

// Config carries everything the mining loop needs to start.
type Config struct {
	Pool     stratum.Config
	Donation donation.Config
	Threads  int
}

// Loop is the running supervisor state: the current Session (swapped
// wholesale on reconnect or donation-window transition), the worker Pool
// bound to it, and the shared hash-rate Tracker and hashlog Logger that
// outlive any one Session.
type Loop struct {
	cfg    Config
	engine hashengine.Engine
	report Reporter
	rate   *hashrate.Tracker
	hashlg *hashlog.Logger
	log    *logrus.Entry

	session  *stratum.Session
	pool     *workerpool.Pool
	donation *donation.Manager
}

// New constructs a Loop. It does not connect to any pool until Run is
// called.
func New(cfg Config, engine hashengine.Engine, report Reporter, rate *hashrate.Tracker, hashlg *hashlog.Logger, log *logrus.Entry) *Loop {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Loop{cfg: cfg, engine: engine, report: report, rate: rate, hashlg: hashlg, log: log}
}

// Run blocks, driving the mining loop until stop is closed.
func (l *Loop) Run(stop <-chan struct{}) error {
	if err := l.connect(l.cfg.Pool); err != nil {
		return err
	}
	defer l.pool.Stop()

	dm, err := donation.NewManager(l.cfg.Donation, time.Now())
	if err != nil {
		return err
	}
	l.donation = dm

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()
	rateReport := time.NewTicker(rateReportEvery)
	defer rateReport.Stop()
	donationTick := time.NewTicker(donationTickEvery)
	defer donationTick.Stop()
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-stop:
			return nil

		case <-l.session.Reconnects():
			l.log.Warn("supervisor: reconnecting")
			if err := l.session.Reconnect(); err != nil {
				l.log.WithError(err).Error("supervisor: reconnect failed")
				l.report.ReportConnectionStatus(false, l.donation.IsDonating())
			} else {
				l.report.ReportConnectionStatus(true, l.donation.IsDonating())
			}

		case job := <-l.session.Jobs():
			l.report.ReportJobReceived(job.ID)
			if err := job.Validate(); err != nil {
				l.log.WithError(err).Warn("supervisor: dropping invalid job")
				continue
			}
			l.pool.SubmitJob(job)

		case sh := <-l.pool.Shares():
			l.submitShare(sh)

		case <-keepAlive.C:
			if err := l.session.KeepAlive(); err != nil {
				l.log.WithError(err).Warn("supervisor: keepalive failed")
			}

		case <-rateReport.C:
			l.report.ReportHashRate(l.rate.Rate(time.Now()))

		case <-donationTick.C:
			l.handleDonationTick()

		case <-poll.C:
			// idle tick: nothing queued, loop again
		}
	}
}

func (l *Loop) submitShare(sh share.Share) {
	if err := l.session.Submit(sh); err != nil {
		l.log.WithError(err).Warn("supervisor: share submission failed")
		l.report.ReportShareFound(sh.JobID, false)
		return
	}
	l.report.ReportShareFound(sh.JobID, true)
}

func (l *Loop) handleDonationTick() {
	switch l.donation.Tick(time.Now()) {
	case donation.EnterDonation:
		l.log.Info("supervisor: entering donation window")
		if err := l.connect(toStratumConfig(l.donation.Config())); err != nil {
			l.log.WithError(err).Error("supervisor: failed to connect to donation pool, will retry next tick")
			return
		}
		l.donation.Commit(true)
		l.report.ReportConnectionStatus(true, true)

	case donation.ExitDonation:
		l.log.Info("supervisor: leaving donation window")
		if err := l.connect(l.cfg.Pool); err != nil {
			l.log.WithError(err).Error("supervisor: failed to reconnect to configured pool, will retry next tick")
			return
		}
		l.donation.Commit(false)
		l.report.ReportConnectionStatus(true, false)
	}
}

func toStratumConfig(d donation.Config) stratum.Config {
	return stratum.Config{URL: d.URL, User: d.User, Pass: d.Pass}
}

// connect replaces the active session and worker pool wholesale: a fresh
// session (with its own job/reconnect queues, per the reference miner's
// dual-listener-ownership rule) feeding a fresh pool sized for l.cfg.Threads.
func (l *Loop) connect(cfg stratum.Config) error {
	session, err := stratum.Login(cfg, l.log)
	if err != nil {
		return err
	}

	if l.pool != nil {
		l.pool.Stop()
	}
	pool := workerpool.New(l.cfg.Threads, l.engine, l.rate, l.hashlg, l.log)
	pool.Start()

	l.session = session
	l.pool = pool

	select {
	case job := <-session.Jobs():
		pool.SubmitJob(job)
	default:
	}
	return nil
}
