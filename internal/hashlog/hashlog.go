// Package hashlog writes a flat CSV audit trail of every accepted share
// candidate, grounded on the reference miner's hash_logger.rs.
package hashlog

import (
	"encoding/hex"
	"fmt"
	"os"
	"sync"
)

// Logger appends one line per found share to a file, truncating it on
// open so each run starts with a clean log.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// Open truncates (or creates) path and returns a Logger writing to it.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("hashlog: open %s: %w", path, err)
	}
	return &Logger{file: f}, nil
}

// Record appends "NONCE,HASH,DIFFICULTY,JOB_ID\n" to the log file.
func (l *Logger) Record(nonce [4]byte, hash [32]byte, difficulty uint64, jobID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s,%s,%d,%s\n", hex.EncodeToString(nonce[:]), hex.EncodeToString(hash[:]), difficulty, jobID)
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("hashlog: write: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
