// Package miningjob defines the immutable unit of work distributed to the
// worker pool, and the difficulty decoding rules the pool's wire formats
// imply.
package miningjob

import (
	"encoding/hex"
	"fmt"
)

// NonceOffset and NonceLen locate the miner-controlled nonce field inside
// a Job's blob: bytes [39:43).
const (
	NonceOffset = 39
	NonceLen    = 4
	MinBlobLen  = 43
)

// MaxTarget is the sentinel difficulty ("accept everything") used for jobs
// that arrive without an explicit target, per the pool's mining.notify
// dialect.
const MaxTarget uint64 = 1<<64 - 1

// Job is an immutable record describing one unit of work. It must never be
// mutated in place after publication: workers that need a fresh nonce copy
// Blob into their own buffer first.
type Job struct {
	ID         string
	Blob       []byte
	Seed       []byte
	Difficulty uint64
}

// Clone returns a deep copy suitable for a worker's private buffer.
func (j Job) Clone() Job {
	blob := make([]byte, len(j.Blob))
	copy(blob, j.Blob)
	seed := make([]byte, len(j.Seed))
	copy(seed, j.Seed)
	return Job{ID: j.ID, Blob: blob, Seed: seed, Difficulty: j.Difficulty}
}

// Validate checks the invariants a Job must hold before it can be worked.
func (j Job) Validate() error {
	if len(j.Blob) < MinBlobLen {
		return fmt.Errorf("miningjob: blob too short: got %d bytes, need at least %d", len(j.Blob), MinBlobLen)
	}
	if j.ID == "" {
		return fmt.Errorf("miningjob: empty job id")
	}
	return nil
}

// DifficultyFromTarget converts a pool-supplied 32-bit target field into
// the 64-bit difficulty threshold used for share detection:
//
//	T = (2^64 - 1) / ((2^32 - 1) / t)
//
// Integer division throughout, matching the reference pool protocol.
func DifficultyFromTarget(t uint32) uint64 {
	if t == 0 {
		return MaxTarget
	}
	const maxU32 = uint64(1<<32 - 1)
	denom := maxU32 / uint64(t)
	if denom == 0 {
		return MaxTarget
	}
	return MaxTarget / denom
}

// DecodeHexBlob decodes a hex-encoded blob/seed field from the wire.
func DecodeHexBlob(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("miningjob: invalid hex: %w", err)
	}
	return b, nil
}

// NonceAt returns the 4 bytes currently occupying the nonce slot.
func NonceAt(blob []byte) [NonceLen]byte {
	var out [NonceLen]byte
	copy(out[:], blob[NonceOffset:NonceOffset+NonceLen])
	return out
}

// WriteNonce writes a big-endian nonce into the blob's nonce slot.
func WriteNonce(blob []byte, nonce uint32) {
	blob[NonceOffset+0] = byte(nonce >> 24)
	blob[NonceOffset+1] = byte(nonce >> 16)
	blob[NonceOffset+2] = byte(nonce >> 8)
	blob[NonceOffset+3] = byte(nonce)
}

// CandidateValue interprets bytes [24:32) of a hash as a little-endian
// u64, the value compared against a Job's difficulty.
func CandidateValue(hash [32]byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(hash[24+i]) << (8 * uint(i))
	}
	return v
}

// MeetsDifficulty reports whether hash is a valid share for difficulty d.
func MeetsDifficulty(hash [32]byte, d uint64) bool {
	return CandidateValue(hash) < d
}
