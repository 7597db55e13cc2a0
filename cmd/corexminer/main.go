// Command corexminer connects to a RandomX pool, distributes work across
// a per-thread worker pool, and periodically donates hash power to a
// secondary pool, patterned after the reference miner's entrypoint and
// a pool server's cmd/stratum bootstrap sequence.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	appconfig "github.com/anonmine-dev/corexminer/internal/config"
	"github.com/anonmine-dev/corexminer/internal/display"
	"github.com/anonmine-dev/corexminer/internal/hashlog"
	"github.com/anonmine-dev/corexminer/internal/hashrate"
	"github.com/anonmine-dev/corexminer/internal/metrics"
	"github.com/anonmine-dev/corexminer/internal/randomx"
	"github.com/anonmine-dev/corexminer/internal/statusapi"
	"github.com/anonmine-dev/corexminer/internal/supervisor"
)

const statusShutdownTimeout = 5 * time.Second

func main() {
	var opts appconfig.Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.ConfigFile != "" {
		file, err := appconfig.LoadFile(opts.ConfigFile)
		if err != nil {
			logrus.WithError(err).Fatal("corexminer: failed to load config file")
		}
		opts.Merge(file)
	}

	if err := opts.Validate(); err != nil {
		logrus.WithError(err).Fatal("corexminer: invalid configuration")
	}

	if opts.Threads <= 0 {
		opts.Threads = runtime.GOMAXPROCS(0)
	}

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.WithField("component", "corexminer")

	hashlg, err := hashlog.Open("hashes.log")
	if err != nil {
		log.WithError(err).Fatal("corexminer: failed to open hash log")
	}
	defer hashlg.Close()

	engine := randomx.New()
	rate := hashrate.New(time.Now())

	metricsReporter := metrics.New()
	reporters := supervisor.MultiReporter{
		display.New(log),
		metricsReporter,
	}

	loop := supervisor.New(opts.ToSupervisorConfig(), engine, reporters, rate, hashlg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(gctx.Done())
	})

	if opts.GUI {
		statusServer := statusapi.NewServer(opts.GUIAddr, metricsReporter)
		g.Go(func() error {
			return statusServer.Run()
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), statusShutdownTimeout)
			defer cancel()
			return statusServer.Shutdown(shutdownCtx)
		})
		log.WithField("addr", opts.GUIAddr).Info("corexminer: status endpoint listening")
	}

	log.WithField("threads", opts.Threads).Info("corexminer: starting")
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("corexminer: exited with error")
	}

	log.Info("corexminer: stopped")
}
