// Package share defines the result of a successful difficulty match.
package share

// Share is a hash meeting the job's current difficulty, ready for
// submission to the pool.
type Share struct {
	JobID string
	Nonce [4]byte
	Hash  [32]byte
}
