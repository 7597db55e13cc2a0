package workerpool

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anonmine-dev/corexminer/internal/hashengine"
	"github.com/anonmine-dev/corexminer/internal/hashlog"
	"github.com/anonmine-dev/corexminer/internal/hashrate"
	"github.com/anonmine-dev/corexminer/internal/miningjob"
	"github.com/anonmine-dev/corexminer/internal/share"
)

const (
	batchSize  = 100
	idleSleep  = 10 * time.Millisecond
	lightSleep = 100 * time.Microsecond
)

// Worker hashes one stride of the nonce space against the job currently
// published in slot, on its own goroutine, reporting hashes to rate and
// emitting Shares whenever a candidate meets the job's difficulty.
type Worker struct {
	Index  int
	Stride uint32

	Slot   *JobSlot
	Engine hashengine.Engine
	Rate   *hashrate.Tracker
	Shares chan<- share.Share
	Log    *hashlog.Logger

	logger *logrus.Entry

	vm          hashengine.VM
	vmFlags     hashengine.Flag
	vmSeed      []byte
	vmCache     hashengine.Cache
	vmDataset   hashengine.Dataset
	lightOnly   bool
	lastVersion uint64
}

// NewWorker constructs a Worker. stride is normally the total worker
// count; index is also this worker's starting nonce offset.
func NewWorker(index int, stride uint32, slot *JobSlot, engine hashengine.Engine, rate *hashrate.Tracker, shares chan<- share.Share, log *logrus.Entry) *Worker {
	return &Worker{
		Index:  index,
		Stride: stride,
		Slot:   slot,
		Engine: engine,
		Rate:   rate,
		Shares: shares,
		logger: log.WithField("worker", index),
	}
}

// Run drives the hashing loop until stop is closed.
func (w *Worker) Run(stop <-chan struct{}) {
	defer w.releaseVM()

	var (
		job     miningjob.Job
		blob    []byte
		version uint64
		ok      bool
		nonce   uint32 = uint32(w.Index)
	)

	for {
		select {
		case <-stop:
			return
		default:
		}

		job, version, ok = w.Slot.Load()
		if !ok {
			time.Sleep(idleSleep)
			continue
		}

		if blob == nil || w.staleVersion(version) {
			blob = job.Clone().Blob
			if err := w.ensureVM(job); err != nil {
				w.logger.WithError(err).Warn("workerpool: vm init failed, retrying idle")
				time.Sleep(idleSleep)
				continue
			}
			w.lastVersion = version
			nonce = uint32(w.Index)
		}

		if w.vm == nil {
			time.Sleep(idleSleep)
			continue
		}

		for i := 0; i < batchSize; i++ {
			select {
			case <-stop:
				return
			default:
			}

			_, curVersion, _ := w.Slot.Load()
			if curVersion != version {
				break
			}

			nonce += w.Stride
			miningjob.WriteNonce(blob, nonce)
			hash, err := w.vm.CalculateHash(blob)
			if err != nil {
				w.logger.WithError(err).Warn("workerpool: hash calculation failed")
				break
			}
			w.Rate.Increment(now(), 1)

			if miningjob.MeetsDifficulty(hash, job.Difficulty) {
				var n [4]byte
				copy(n[:], blob[miningjob.NonceOffset:miningjob.NonceOffset+miningjob.NonceLen])
				sh := share.Share{JobID: job.ID, Nonce: n, Hash: hash}
				if w.Log != nil {
					_ = w.Log.Record(n, hash, job.Difficulty, job.ID)
				}
				select {
				case w.Shares <- sh:
				case <-stop:
					return
				}
			}

			if w.lightOnly {
				time.Sleep(lightSleep)
			}
		}
	}
}

func (w *Worker) staleVersion(v uint64) bool {
	return v != w.lastVersion
}

func now() time.Time { return time.Now() }

func (w *Worker) ensureVM(job miningjob.Job) error {
	w.releaseVM()

	flags := w.Engine.RecommendedFlags() | hashengine.FlagFullMem | hashengine.FlagLargePages

	for {
		cache, err := w.Engine.NewCache(flags, job.Seed)
		if err != nil {
			if degraded, ok := degrade(flags); ok {
				flags = degraded
				continue
			}
			return err
		}

		dataset, err := w.Engine.NewDataset(flags, cache)
		if err != nil {
			cache.Close()
			if degraded, ok := degrade(flags); ok {
				flags = degraded
				continue
			}
			// Fall back to light mode: VM backed by cache only.
			vm, vmErr := w.Engine.NewVM(flags&^hashengine.FlagFullMem, cache, nil)
			if vmErr != nil {
				cache.Close()
				return vmErr
			}
			w.vm = vm
			w.vmCache = cache
			w.vmFlags = flags
			w.vmSeed = job.Seed
			w.lightOnly = true
			return nil
		}

		vm, err := w.Engine.NewVM(flags, cache, dataset)
		if err != nil {
			dataset.Close()
			cache.Close()
			if degraded, ok := degrade(flags); ok {
				flags = degraded
				continue
			}
			return err
		}

		w.vm = vm
		w.vmCache = cache
		w.vmDataset = dataset
		w.vmFlags = flags
		w.vmSeed = job.Seed
		w.lightOnly = false
		return nil
	}
}

// degrade drops one optional flag, in a fixed order, to retry allocation
// with reduced requirements. It returns ok=false once nothing more can be
// dropped, signalling the caller to give up.
func degrade(flags hashengine.Flag) (hashengine.Flag, bool) {
	for _, f := range []hashengine.Flag{hashengine.FlagLargePages, hashengine.FlagFullMem, hashengine.FlagJIT, hashengine.FlagHardAES} {
		if flags.Has(f) {
			return flags.Without(f), true
		}
	}
	return flags, false
}

func (w *Worker) releaseVM() {
	if w.vm != nil {
		w.vm.Close()
		w.vm = nil
	}
	if w.vmDataset != nil {
		w.vmDataset.Close()
		w.vmDataset = nil
	}
	if w.vmCache != nil {
		w.vmCache.Close()
		w.vmCache = nil
	}
}
