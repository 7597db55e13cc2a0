// Package stratum maintains one live pool connection and translates
// between the pool's line-delimited JSON dialect and typed Job/Share
// operations.
package stratum

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/anonmine-dev/corexminer/internal/miningjob"
	"github.com/anonmine-dev/corexminer/internal/share"
	"github.com/anonmine-dev/corexminer/internal/stratum/rpc"
)

// Session owns one live pool connection: the send half on the caller's
// thread, and an asynchronous listener goroutine that classifies inbound
// frames and pushes parsed jobs/reconnect signals to dedicated queues.
type Session struct {
	url, user, pass string
	loginID         string

	// connID identifies one TCP connection's lifetime in logs, distinct
	// from loginID (the pool's own session identifier), so reconnects are
	// traceable even when the pool hands back the same login id.
	connID string

	conn   net.Conn
	writer *bufio.Writer

	jobs       chan miningjob.Job
	reconnects chan struct{}

	log *logrus.Entry
}

// Config carries the fields needed to log in to a pool.
type Config struct {
	URL  string
	User string
	Pass string
}

const (
	jobQueueDepth       = 16
	reconnectQueueDepth = 4
)

// Login opens a TCP connection with no read timeout, performs the login
// handshake, and spawns the listener goroutine. The initial job from the
// login result is pushed onto the job queue before Login returns.
func Login(cfg Config, log *logrus.Entry) (*Session, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	connID := uuid.New().String()
	log = log.WithFields(logrus.Fields{"pool": cfg.URL, "conn_id": connID})

	conn, err := net.Dial("tcp", cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "stratum: dial %s", cfg.URL)
	}

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	loginReq := rpc.NewLogin(cfg.User, cfg.Pass)
	if err := sendRequest(writer, loginReq); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "stratum: send login")
	}

	line, err := readLine(reader)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "stratum: read login response")
	}
	env, err := rpc.ParseEnvelope(line)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "stratum: parse login response")
	}
	if env.Error != nil {
		conn.Close()
		return nil, errors.Errorf("stratum: login rejected: %s", env.Error.Message)
	}
	loginResult, err := env.DecodeLoginResult()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "stratum: decode login result")
	}

	job, err := decodeJobObject(loginResult.Job)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "stratum: decode initial job")
	}

	s := &Session{
		url:        cfg.URL,
		user:       cfg.User,
		pass:       cfg.Pass,
		loginID:    loginResult.ID,
		connID:     connID,
		conn:       conn,
		writer:     writer,
		jobs:       make(chan miningjob.Job, jobQueueDepth),
		reconnects: make(chan struct{}, reconnectQueueDepth),
		log:        log,
	}
	s.jobs <- job

	go s.listen(reader)

	return s, nil
}

func decodeJobObject(jo rpc.JobObject) (miningjob.Job, error) {
	blob, err := miningjob.DecodeHexBlob(jo.Blob)
	if err != nil {
		return miningjob.Job{}, err
	}
	seed, err := miningjob.DecodeHexBlob(jo.Seed)
	if err != nil {
		return miningjob.Job{}, err
	}
	diff := miningjob.MaxTarget
	if jo.Target != 0 {
		diff = miningjob.DifficultyFromTarget(jo.Target)
	}
	return miningjob.Job{ID: jo.ID, Blob: blob, Seed: seed, Difficulty: diff}, nil
}

// listen is the dedicated reader goroutine: read-one-line / classify /
// dispatch, until EOF or a parse failure, at which point it signals
// reconnect and exits.
func (s *Session) listen(reader *bufio.Reader) {
	for {
		line, err := readLine(reader)
		if err != nil {
			s.log.WithError(err).Warn("stratum: listener connection lost")
			s.signalReconnect()
			return
		}
		env, err := rpc.ParseEnvelope(line)
		if err != nil {
			s.log.WithError(err).Warn("stratum: listener failed to parse line")
			s.signalReconnect()
			return
		}

		if env.IsNotification() {
			if s.handleNotification(env) {
				continue
			}
			// handleNotification returning false means the line looked
			// like a known method but failed to decode; keep listening,
			// this is a protocol error, not a transport failure.
			continue
		}
		s.handleResponse(env)
	}
}

func (s *Session) handleNotification(env rpc.Envelope) bool {
	switch env.Method {
	case "job":
		jo, err := env.DecodeJobNotification()
		if err != nil {
			s.log.WithError(err).Warn("stratum: malformed job notification")
			return false
		}
		job, err := decodeJobObject(jo)
		if err != nil {
			s.log.WithError(err).Warn("stratum: malformed job payload")
			return false
		}
		s.log.WithField("job_id", job.ID).Info("stratum: new job")
		s.jobs <- job
		return true

	case "mining.notify":
		jobID, blobHex, seedHex, err := env.DecodeMiningNotify()
		if err != nil {
			s.log.WithError(err).Warn("stratum: malformed mining.notify")
			return false
		}
		blob, err := hex.DecodeString(blobHex)
		if err != nil {
			s.log.WithError(err).Warn("stratum: mining.notify blob not hex")
			return false
		}
		seed, err := hex.DecodeString(seedHex)
		if err != nil {
			s.log.WithError(err).Warn("stratum: mining.notify seed not hex")
			return false
		}
		job := miningjob.Job{ID: jobID, Blob: blob, Seed: seed, Difficulty: miningjob.MaxTarget}
		s.log.WithField("job_id", job.ID).Info("stratum: new job (mining.notify)")
		s.jobs <- job
		return true

	case "mining.set_difficulty":
		s.log.Debug("stratum: mining.set_difficulty (logged only, not applied to current jobs)")
		return true

	case "mining.set_extranonce":
		s.log.Debug("stratum: mining.set_extranonce (logged only)")
		return true

	default:
		s.log.WithField("method", env.Method).Debug("stratum: unknown method ignored")
		return true
	}
}

func (s *Session) handleResponse(env rpc.Envelope) {
	if env.Error != nil {
		s.log.WithField("error", env.Error.Message).Warn("stratum: pool returned an error response")
		return
	}
	status, ok, err := env.DecodeStatusResult()
	if err != nil {
		s.log.WithError(err).Warn("stratum: malformed response")
		return
	}
	if !ok {
		return
	}
	switch status.Status {
	case "OK":
		s.log.Info("stratum: share accepted")
	case "KEEPALIVED":
		s.log.Debug("stratum: keepalive acknowledged")
	default:
		s.log.WithField("status", status.Status).Warn("stratum: unrecognized response status")
	}
}

func (s *Session) signalReconnect() {
	select {
	case s.reconnects <- struct{}{}:
	default:
		// A reconnect signal is already pending; duplicates are acceptable.
	}
}

// Jobs returns the channel new Jobs are pushed onto. The caller should
// drain it with a non-blocking select.
func (s *Session) Jobs() <-chan miningjob.Job { return s.jobs }

// Reconnects returns the channel reconnect signals are pushed onto.
func (s *Session) Reconnects() <-chan struct{} { return s.reconnects }

// Submit sends a share submission request.
func (s *Session) Submit(sh share.Share) error {
	req := rpc.NewSubmit(s.loginID, sh.JobID, hex.EncodeToString(sh.Nonce[:]), hex.EncodeToString(sh.Hash[:]))
	if err := sendRequest(s.writer, req); err != nil {
		return fmt.Errorf("stratum: submit failed: %w", err)
	}
	return nil
}

// KeepAlive sends a no-op keepalive request.
func (s *Session) KeepAlive() error {
	req := rpc.NewKeepAlive(s.loginID)
	if err := sendRequest(s.writer, req); err != nil {
		return fmt.Errorf("stratum: keepalive failed: %w", err)
	}
	return nil
}

// Reconnect destructively replaces the connection, writer, job queue,
// reconnect queue, and login id by re-running login against the stored
// url/user/pass. A fresh reconnect queue per generation ensures the old
// listener's signal (if any arrives late) cannot poison the new session.
func (s *Session) Reconnect() error {
	next, err := Login(Config{URL: s.url, User: s.user, Pass: s.pass}, s.log)
	if err != nil {
		return errors.Wrap(err, "stratum: reconnect")
	}
	old := s.conn
	s.conn = next.conn
	s.writer = next.writer
	s.loginID = next.loginID
	s.jobs = next.jobs
	s.reconnects = next.reconnects
	if old != nil {
		old.Close()
	}
	return nil
}

func sendRequest(w *bufio.Writer, req rpc.Request) error {
	line, err := rpc.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.Flush()
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 {
			return nil, err
		}
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("stratum: EOF")
	}
	return line, nil
}
